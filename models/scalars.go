package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"jamjam-trek/normalize"
)

// Flag ist ein bool, der auch 1/0 und "1"/"0" der Laravel-API versteht.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*f = Flag(v)
	case float64:
		*f = v != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		*f = s == "1" || s == "true" || s == "yes" || s == "on"
	default:
		*f = false
	}
	return nil
}

// Number ist ein float64, der auch numerische Strings wie "1200.00" akzeptiert.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// DayList ist der Reiseplan eines Treks. Beim Dekodieren läuft immer
// normalize.DecodeDayList, damit mehrfach kodierte Strings aufgelöst werden.
type DayList []string

func (d *DayList) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = DayList(normalize.DecodeDayList(raw))
	return nil
}
