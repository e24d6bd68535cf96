package sheetdb

import (
	"strconv"
	"strings"
	"time"
)

// Fields is an insertion-ordered mapping from field name to cell value.
// It is the wire form between a model and a storage row: models marshal
// into Fields, rows are decoded into Fields before parsing. Values are
// strings because tabular media store strings.
type Fields struct {
	names  []string
	values map[string]string
}

// NewFields creates an empty Fields.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set stores a value, appending the name on first assignment so that
// declaration order is preserved.
func (f *Fields) Set(name, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Get returns the value for name and whether it is present.
func (f *Fields) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Names returns the field names in insertion order.
func (f *Fields) Names() []string {
	names := make([]string, len(f.names))
	copy(names, f.names)
	return names
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.names)
}

// GetString returns the value as string or defaultValue if not found.
func (f *Fields) GetString(name string, defaultValue string) string {
	v, ok := f.values[name]
	if !ok {
		return defaultValue
	}
	return v
}

// GetInt64 returns the value parsed as int64 or defaultValue if not
// found or unparseable.
func (f *Fields) GetInt64(name string, defaultValue int64) int64 {
	v, ok := f.values[name]
	if !ok {
		return defaultValue
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if fl, err := strconv.ParseFloat(v, 64); err == nil {
		return int64(fl)
	}
	return defaultValue
}

// GetFloat64 returns the value parsed as float64 or defaultValue if not
// found or unparseable.
func (f *Fields) GetFloat64(name string, defaultValue float64) float64 {
	v, ok := f.values[name]
	if !ok {
		return defaultValue
	}
	if fl, err := strconv.ParseFloat(v, 64); err == nil {
		return fl
	}
	return defaultValue
}

// GetBool returns the value parsed as bool or defaultValue if not found.
func (f *Fields) GetBool(name string, defaultValue bool) bool {
	v, ok := f.values[name]
	if !ok {
		return defaultValue
	}
	switch v {
	case "true", "TRUE", "1":
		return true
	case "false", "FALSE", "0":
		return false
	}
	return defaultValue
}

// GetStrings returns the value split on commas or defaultValue if not found.
func (f *Fields) GetStrings(name string, defaultValue []string) []string {
	v, ok := f.values[name]
	if !ok {
		return defaultValue
	}
	if v == "" {
		return []string{}
	}
	return strings.Split(v, ",")
}

// GetTime returns the value parsed as time.Time or defaultValue if not
// found or unparseable.
func (f *Fields) GetTime(name string, defaultValue time.Time) time.Time {
	v, ok := f.values[name]
	if !ok {
		return defaultValue
	}
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, v); err == nil {
			return t
		}
	}
	return defaultValue
}

// SetInt64 sets an int64 value.
func (f *Fields) SetInt64(name string, value int64) {
	f.Set(name, strconv.FormatInt(value, 10))
}

// SetFloat64 sets a float64 value.
func (f *Fields) SetFloat64(name string, value float64) {
	f.Set(name, strconv.FormatFloat(value, 'g', -1, 64))
}

// SetBool sets a bool value.
func (f *Fields) SetBool(name string, value bool) {
	f.Set(name, strconv.FormatBool(value))
}

// SetStrings sets a []string value, stored comma-separated.
func (f *Fields) SetStrings(name string, value []string) {
	f.Set(name, strings.Join(value, ","))
}

// SetTime sets a time.Time value, stored as RFC 3339.
func (f *Fields) SetTime(name string, value time.Time) {
	f.Set(name, value.Format(time.RFC3339))
}
