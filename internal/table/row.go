package table

import (
	"encoding/json"
	"strconv"
)

// Row is the minimal shape a record must have to be shown by a Browser.
// Concrete row types may carry any number of extra fields.
type Row interface {
	RowID() string
	DisplayName() string
	ContactEmail() string
	ContactPhone() string
	AvatarRef() string
}

// Record is an open row backed by a map, for data that arrives as loosely
// typed JSON. Missing or mistyped fields read as the empty string.
type Record map[string]any

// Record field keys
const (
	KeyID     = "id"
	KeyName   = "name"
	KeyEmail  = "email"
	KeyPhone  = "phone"
	KeyAvatar = "image"
)

// RowID returns the identifier as a string. Numeric identifiers are
// formatted in decimal.
func (r Record) RowID() string {
	switch v := r[KeyID].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func (r Record) DisplayName() string  { return r.String(KeyName) }
func (r Record) ContactEmail() string { return r.String(KeyEmail) }
func (r Record) ContactPhone() string { return r.String(KeyPhone) }
func (r Record) AvatarRef() string    { return r.String(KeyAvatar) }

// String returns the field as a string, or "" if it is absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// StatusField returns a status selector reading a string field of a Record.
func StatusField(key string) func(Record) (string, bool) {
	return func(r Record) (string, bool) {
		s, ok := r[key].(string)
		return s, ok
	}
}
