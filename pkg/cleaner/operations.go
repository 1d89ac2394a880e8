// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/David-Botos/message-ingress/pkg/converter"
	"github.com/David-Botos/message-ingress/pkg/model"
)

const (
	segmentSeparator = ";"
	valueSeparator   = "-"

	// at most this many splits, so a categories string yields up to 37 segments
	maxCategorySplits = 36
	// length of the "-<digit>" suffix stripped from a segment to get its name
	valueSuffixLen = 2
)

// ParseCategorySchema derives the ordered category names from one packed
// categories string
func ParseCategorySchema(raw string) (*model.CategorySchema, error) {
	segments := splitCategories(raw)

	schema := &model.CategorySchema{Fields: make([]model.CategoryField, len(segments))}
	for i, seg := range segments {
		name, err := segmentName(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		schema.Fields[i] = model.CategoryField{Name: name, Position: i}
	}

	return schema, nil
}

// splitCategories splits a packed categories string on ";" with at most
// maxCategorySplits splits
func splitCategories(raw string) []string {
	return strings.SplitN(raw, segmentSeparator, maxCategorySplits+1)
}

// segmentName drops the trailing "-<digit>" of a segment
func segmentName(seg string) (string, error) {
	r := []rune(seg)
	if len(r) < valueSuffixLen {
		return "", fmt.Errorf("segment %q is too short to carry a name", seg)
	}
	return string(r[:len(r)-valueSuffixLen]), nil
}

// splitSegment returns the text before the first "-" of a segment and the
// second "-"-separated token as an integer
func splitSegment(seg string) (string, int64, error) {
	tokens := strings.Split(seg, valueSeparator)
	if len(tokens) < 2 {
		return "", 0, fmt.Errorf("segment %q has no %q separator", seg, valueSeparator)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(tokens[1]), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("segment %q: value %q is not an integer", seg, tokens[1])
	}
	return tokens[0], v, nil
}

// segmentMatches reports whether seg carries the category name. The label
// before the value is compared, and so is the suffix-stripped form the schema
// was built from, so values of any width match.
func segmentMatches(seg, label, name string) bool {
	if label == name {
		return true
	}
	stripped, err := segmentName(seg)
	return err == nil && stripped == name
}

// decodeCategories reads one value per schema position from a packed string.
// aligned reports whether the row's segment names and count match the schema;
// in strict mode a misaligned row is an error.
func decodeCategories(raw string, schema *model.CategorySchema, mode model.ValidationMode) (values []interface{}, aligned bool, err error) {
	segments := splitCategories(raw)
	if len(segments) < schema.Len() {
		return nil, false, fmt.Errorf("expected %d category segments, found %d", schema.Len(), len(segments))
	}

	aligned = len(segments) == schema.Len()
	if !aligned && mode == model.ValidationStrict {
		return nil, false, fmt.Errorf("found %d category segments, expected exactly %d", len(segments), schema.Len())
	}

	values = make([]interface{}, schema.Len())
	for _, field := range schema.Fields {
		seg := segments[field.Position]

		label, v, err := splitSegment(seg)
		if err != nil {
			return nil, false, err
		}
		values[field.Position] = v

		if !segmentMatches(seg, label, field.Name) {
			if mode == model.ValidationStrict {
				return nil, false, fmt.Errorf("segment %d is %q, expected category %q", field.Position, seg, field.Name)
			}
			aligned = false
		}
	}

	return values, aligned, nil
}

// categoryCell returns the packed categories string of a row
func categoryCell(row []interface{}, idx, r int) (string, error) {
	v := row[idx]
	if v == nil {
		return "", fmt.Errorf("row %d: %s is empty", r, CategoriesColumn)
	}
	return converter.ToString(v), nil
}

// rowKey encodes a row so that two rows share a key only when every cell is
// equal. Each cell is tagged with its kind and length-prefixed.
func rowKey(row []interface{}) string {
	var b strings.Builder
	for _, v := range row {
		var tag byte
		switch v.(type) {
		case nil:
			b.WriteString("n;")
			continue
		case int64:
			tag = 'i'
		case float64:
			tag = 'f'
		default:
			tag = 's'
		}
		s := converter.ToString(v)
		b.WriteByte(tag)
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}
