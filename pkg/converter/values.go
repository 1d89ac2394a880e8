// pkg/converter/values.go
package converter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/David-Botos/message-ingress/pkg/model"
)

// nullMarkers are the cell spellings read as a missing value, matching the
// defaults of common dataframe CSV readers
var nullMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNullMarker reports whether a raw cell is read as a missing value
func IsNullMarker(raw string) bool {
	_, ok := nullMarkers[raw]
	return ok
}

// InferColumnType picks the narrowest type that every non-null cell parses as.
// A column with no non-null cells is Text.
func InferColumnType(values []string) model.ColumnType {
	seen := false
	allInt, allReal := true, true

	for _, v := range values {
		if IsNullMarker(v) {
			continue
		}
		seen = true
		if allInt {
			if _, err := parseInt(v); err != nil {
				allInt = false
			}
		}
		if !allInt {
			if _, err := parseReal(v); err != nil {
				allReal = false
				break
			}
		}
	}

	switch {
	case !seen:
		return model.TypeText
	case allInt:
		return model.TypeInteger
	case allReal:
		return model.TypeReal
	default:
		return model.TypeText
	}
}

// ParseCell converts a raw CSV cell into the Go value for the column type.
// Null markers become nil.
func ParseCell(raw string, t model.ColumnType) (interface{}, error) {
	if IsNullMarker(raw) {
		return nil, nil
	}

	switch t {
	case model.TypeInteger:
		v, err := parseInt(raw)
		if err != nil {
			return nil, fmt.Errorf("cannot convert '%s' to integer: %w", raw, err)
		}
		return v, nil
	case model.TypeReal:
		v, err := parseReal(raw)
		if err != nil {
			return nil, fmt.Errorf("cannot convert '%s' to real: %w", raw, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// ConvertValue normalises a cell into a value every database/sql driver accepts
func (c *TypeConverter) ConvertValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int64, float64, string:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case []byte:
		return string(v), nil
	default:
		return nil, fmt.Errorf("cannot convert %T for %s", value, c.dialect)
	}
}

// ToString renders a cell as text; nil renders as the empty string
func ToString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseReal(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
