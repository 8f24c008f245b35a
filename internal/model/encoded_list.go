package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// EncodedList is a list of strings persisted as a JSON array in a text column.
// The raw text is kept as stored so rows written by older clients, including
// malformed ones, can still be loaded; decoding happens on read.
type EncodedList struct {
	Raw   string
	Valid bool
}

// NewEncodedList encodes items. A nil slice yields an absent value.
func NewEncodedList(items []string) EncodedList {
	if items == nil {
		return EncodedList{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return EncodedList{}
	}
	return EncodedList{Raw: string(b), Valid: true}
}

// IsAbsent reports whether no usable text is stored.
func (l EncodedList) IsAbsent() bool {
	return !l.Valid || strings.TrimSpace(l.Raw) == ""
}

// Decode returns the stored list. Absent values and a JSON null decode to nil.
// Text that is not a JSON array of strings returns an error.
func (l EncodedList) Decode() ([]string, error) {
	if l.IsAbsent() {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(l.Raw), &items); err != nil {
		return nil, fmt.Errorf("decode encoded list %q: %w", truncateRaw(l.Raw), err)
	}
	return items, nil
}

// Scan implements sql.Scanner.
func (l *EncodedList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		l.Raw, l.Valid = "", false
	case string:
		l.Raw, l.Valid = v, true
	case []byte:
		l.Raw, l.Valid = string(v), true
	default:
		return fmt.Errorf("unsupported type %T for EncodedList", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (l EncodedList) Value() (driver.Value, error) {
	if !l.Valid {
		return nil, nil
	}
	return l.Raw, nil
}

// GormDataType keeps the column a plain text column on every dialect.
func (EncodedList) GormDataType() string {
	return "text"
}

// MarshalJSON renders the decoded list, or null when it is absent or unreadable.
func (l EncodedList) MarshalJSON() ([]byte, error) {
	items, err := l.Decode()
	if err != nil || items == nil {
		return []byte("null"), nil
	}
	return json.Marshal(items)
}

// UnmarshalJSON accepts a JSON array of strings or null.
func (l *EncodedList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = EncodedList{}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = NewEncodedList(items)
	return nil
}

func truncateRaw(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
