package normalize

import "time"

// Accessors over the untyped JSON-decoded document. The untyped shape
// stays inside connectors: everything leaving a connector is a typed
// ontology entity.

// String returns doc[key] if it is a string, else "".
func String(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

// Map returns doc[key] if it is a nested mapping, else nil.
func Map(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}

// Slice returns doc[key] if it is a sequence, else nil.
func Slice(doc map[string]any, key string) []any {
	s, _ := doc[key].([]any)
	return s
}

// Float returns doc[key] as a float64 if numeric, else 0.
func Float(doc map[string]any, key string) float64 {
	f, _ := doc[key].(float64)
	return f
}

// RequireString returns doc[key] as a non-empty string or a bad-shape
// error naming the field.
func RequireString(format string, doc map[string]any, key, path string) (string, error) {
	v, present := doc[key]
	if !present {
		return "", &NormalizationError{Format: format, Kind: KindBadShape, Path: path, Reason: "required field is missing"}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &NormalizationError{Format: format, Kind: KindBadShape, Path: path, Value: v, Reason: "field must be a non-empty string"}
	}
	return s, nil
}

// timeLayouts are the string encodings accepted for source timestamps,
// tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Time parses doc[key] as an instant. An absent or null field yields
// nil — never an epoch-zero sentinel. An unparseable value yields a
// timestamp error naming the field.
func Time(format string, doc map[string]any, key, path string) (*time.Time, error) {
	v, present := doc[key]
	if !present || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, &NormalizationError{Format: format, Kind: KindBadTimestamp, Path: path, Value: v, Reason: "timestamp must be a string"}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &NormalizationError{Format: format, Kind: KindBadTimestamp, Path: path, Value: s, Reason: "unparseable timestamp"}
}

// RequireTime is Time for fields the source format always carries.
func RequireTime(format string, doc map[string]any, key, path string) (time.Time, error) {
	t, err := Time(format, doc, key, path)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, &NormalizationError{Format: format, Kind: KindBadShape, Path: path, Reason: "required timestamp is missing"}
	}
	return *t, nil
}
