package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// EngineValue converts a value scanned from a database driver into a JSON friendly one.
// Dates become text in SQLite's own format so they compare equal to expected strings.
func EngineValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return formatTime(t)
	default:
		return v
	}
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	if t.Nanosecond() != 0 {
		return strings.TrimRight(t.Format("2006-01-02 15:04:05.000000"), "0")
	}
	return t.Format("2006-01-02 15:04:05")
}

// ToJSONTree round trips a value through JSON so it can be compared with decoded JSON
func ToJSONTree(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return ParseJSON(string(raw))
}

// ParseJSON decodes a JSON document into a generic tree
func ParseJSON(s string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EqualJSON compares two decoded JSON trees. Object key order never matters,
// array order and length always do.
func EqualJSON(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// PrettyJSON renders a tree with two space indentation for diagnostics
func PrettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
