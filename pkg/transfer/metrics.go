package transfer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pipeline stages
const (
	StageLoad  = "load"
	StageClean = "clean"
	StageSave  = "save"
)

// StageTiming records how long one stage took
type StageTiming struct {
	Stage    string
	Start    time.Time
	Duration time.Duration
	Rows     int64
}

// RunMetrics collects per-stage timings for a run
type RunMetrics struct {
	mu     sync.Mutex
	logger *zap.Logger
	stages []StageTiming
}

// NewRunMetrics creates an empty metrics collector
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{logger: logger}
}

// StartStage begins timing a stage. The returned function ends it, recording
// the number of rows the stage produced.
func (rm *RunMetrics) StartStage(stage string) func(rows int64) {
	start := time.Now()
	return func(rows int64) {
		timing := StageTiming{
			Stage:    stage,
			Start:    start,
			Duration: time.Since(start),
			Rows:     rows,
		}

		rm.mu.Lock()
		rm.stages = append(rm.stages, timing)
		rm.mu.Unlock()

		rm.logger.Debug("Stage finished",
			zap.String("stage", stage),
			zap.Duration("duration", timing.Duration),
			zap.Int64("rows", rows))
	}
}

// Stages returns the finished stages in completion order
func (rm *RunMetrics) Stages() []StageTiming {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	out := make([]StageTiming, len(rm.stages))
	copy(out, rm.stages)
	return out
}

// Duration returns the summed duration of all finished stages
func (rm *RunMetrics) Duration() time.Duration {
	var total time.Duration
	for _, s := range rm.Stages() {
		total += s.Duration
	}
	return total
}

// GenerateMetricsReport creates a short human-readable timing report
func (rm *RunMetrics) GenerateMetricsReport() string {
	var b strings.Builder
	b.WriteString("Run Metrics Report\n==================\n")
	for _, s := range rm.Stages() {
		fmt.Fprintf(&b, "%-8s %10s  %d rows\n", s.Stage, formatDuration(s.Duration), s.Rows)
	}
	fmt.Fprintf(&b, "%-8s %10s\n", "total", formatDuration(rm.Duration()))
	return b.String()
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
