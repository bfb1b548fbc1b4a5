package apiutil

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// ParseOptionalDate parses YYYY-MM-DD in loc. Empty input is the zero time.
func ParseOptionalDate(raw, field string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

// NullDate maps a YYYY-MM-DD string to a nullable date. Anything else,
// including an impossible calendar date, is NULL.
func NullDate(raw string) sql.NullTime {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// FormatNullDate renders a nullable date as YYYY-MM-DD or "".
func FormatNullDate(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(DateLayout)
}

func NullString(raw string) sql.NullString {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}

// FlexibleID accepts a JSON number or a numeric string.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" {
		s = ""
	}
	*f = FlexibleID(s)
	return nil
}

func (f FlexibleID) String() string {
	return strings.TrimSpace(string(f))
}
