// Package record models one submitted social-profile record and the tolerant
// accessors the scoring checks use to read it.
//
// A Record is a decoded JSON object. Nothing in it is required: absent and
// malformed fields both read as their zero default, never as an error.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known field names.
const (
	FieldHandle      = "handle"
	FieldDescription = "description"
	FieldFollowers   = "followers"
	FieldRanking     = "ranking"
	FieldTweets      = "tweets"
)

// ErrDecode is returned when a payload is neither a JSON object, an array of
// objects, nor null.
var ErrDecode = errors.New("decode record")

// Record is one submission's structured data.
type Record map[string]any

// Empty reports whether the record carries no fields at all.
func (r Record) Empty() bool { return len(r) == 0 }

// Has reports whether every named field is present, whatever its value.
func (r Record) Has(fields ...string) bool {
	for _, f := range fields {
		if _, ok := r[f]; !ok {
			return false
		}
	}
	return true
}

// Text returns the named field when it holds text, and "" otherwise.
func (r Record) Text(field string) string {
	s, _ := r[field].(string)
	return s
}

// Followers returns the follower entries when the field holds a sequence.
// Entries keep their decoded type; non-text entries are judged by the caller.
func (r Record) Followers() []any {
	v, ok := r[FieldFollowers]
	if !ok {
		return nil
	}
	seq, _ := AsSequence(v)
	return seq
}

// IsText reports whether v is a text value.
func IsText(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsSequence reports whether v is an ordered sequence.
func IsSequence(v any) bool {
	_, ok := AsSequence(v)
	return ok
}

// AsSequence normalizes the sequence shapes a Record can hold: []any from
// JSON decoding and []string when built in code.
func AsSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

// Truthy applies JSON-value truthiness: null, false, zero, empty text,
// empty sequences and empty mappings are false; everything else is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case Record:
		return len(t) > 0
	default:
		return true
	}
}

// Decode parses a single record. A JSON null decodes to an empty record.
func Decode(data []byte) (Record, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	switch v := raw.(type) {
	case nil:
		return Record{}, nil
	case map[string]any:
		return Record(v), nil
	default:
		return nil, fmt.Errorf("%w: expected object, got %T", ErrDecode, raw)
	}
}

// DecodeMany parses either one record or an array of records, preserving
// order. Array entries that are null decode to empty records.
func DecodeMany(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		r, err := Decode(trimmed)
		if err != nil {
			return nil, err
		}
		return []Record{r}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	out := make([]Record, 0, len(items))
	for i, item := range items {
		r, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
