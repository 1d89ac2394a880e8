package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/message-ingress/pkg/model"
)

// RunJob describes one pipeline run
type RunJob struct {
	ID             string    // Unique run identifier, used to correlate log lines
	MessagesPath   string    // Messages dataset
	CategoriesPath string    // Categories dataset
	Output         string    // Output location as given on the command line
	CreatedAt      time.Time // Job creation timestamp
}

// NewRunJob creates a new run job with a fresh identifier
func NewRunJob(messagesPath, categoriesPath, output string) RunJob {
	return RunJob{
		ID:             uuid.New().String(),
		MessagesPath:   messagesPath,
		CategoriesPath: categoriesPath,
		Output:         output,
		CreatedAt:      time.Now(),
	}
}

// RunResult represents the result of a pipeline run
type RunResult struct {
	JobID             string
	Table             string
	Success           bool
	RowsLoaded        int
	RowsWritten       int64
	CategoryColumns   int
	DuplicatesRemoved int
	MisalignedRows    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// NewRunResult initializes a result for a job
func NewRunResult(job RunJob) *RunResult {
	return &RunResult{
		JobID:     job.ID,
		Table:     TableName,
		StartTime: time.Now(),
	}
}

// AddCleaningReport copies the transform counters into the result
func (r *RunResult) AddCleaningReport(report *model.CleaningReport) {
	if report == nil {
		return
	}
	r.RowsLoaded = report.RowsIn
	r.CategoryColumns = report.CategoryColumns
	r.DuplicatesRemoved = report.DuplicatesRemoved
	r.MisalignedRows = len(report.MisalignedRows)
}

// Complete marks the run as finished and calculates duration
func (r *RunResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}
