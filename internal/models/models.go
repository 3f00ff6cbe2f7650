package models

import (
	"bytes"
	"encoding/json"
)

type EventType string

const (
	PageView EventType = "page_view"
	Click    EventType = "click"
)

// Wire field names of the flattened event record.
const (
	FieldEventType        = "event_type"
	FieldTimestamp        = "timestamp"
	FieldSessionID        = "session_id"
	FieldURL              = "url"
	FieldCurrentPage      = "current_page"
	FieldPreviousPage     = "previous_page"
	FieldSequenceStep     = "sequence_step"
	FieldTitle            = "title"
	FieldElementTag       = "element_tag"
	FieldElementID        = "element_id"
	FieldElementClass     = "element_class"
	FieldElementText      = "element_text"
	FieldTargetURL        = "target_url"
	FieldUserAgent        = "user_agent"
	FieldScreenResolution = "screen_resolution"
	FieldLanguage         = "language"
)

// Fields is an insertion-ordered set of record fields. Setting an existing
// key replaces its value but keeps its original position.
type Fields struct {
	keys   []string
	values map[string]any
}

func (f *Fields) Set(key string, value any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Merge copies every field of other into f, later values winning.
func (f *Fields) Merge(other Fields) {
	for _, key := range other.keys {
		f.Set(key, other.values[key])
	}
}

func (f Fields) Get(key string) (any, bool) {
	value, ok := f.values[key]
	return value, ok
}

func (f Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f Fields) Len() int { return len(f.keys) }

// Record is one built event, flattened to a single JSON object. It is
// immutable once built.
type Record struct {
	fields Fields
}

func NewRecord(fields Fields) Record {
	var copied Fields
	copied.Merge(fields)
	return Record{fields: copied}
}

func (r Record) Get(key string) (any, bool) { return r.fields.Get(key) }

// String returns the field as a string, or "" when absent or not a string.
func (r Record) String(key string) string {
	value, _ := r.fields.Get(key)
	s, _ := value.(string)
	return s
}

func (r Record) Keys() []string { return r.fields.Keys() }

func (r Record) Type() EventType {
	value, _ := r.fields.Get(FieldEventType)
	switch v := value.(type) {
	case EventType:
		return v
	case string:
		return EventType(v)
	}
	return ""
}

// MarshalJSON writes fields in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.fields.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueJSON, err := json.Marshal(r.fields.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
