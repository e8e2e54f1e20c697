package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxUnwrapDepth begrenzt die Anzahl der JSON-Parse-Versuche pro Feld.
const MaxUnwrapDepth = 10

// DefaultDay ist der Platzhalter, mit dem ein leerer Reiseplan beginnt.
const DefaultDay = "Day 1: "

// DayStatus gibt an, auf welchem Weg DecodeDayListStatus zu seinem Ergebnis kam.
type DayStatus string

const (
	DaysGiven     DayStatus = "given"     // Wert war bereits eine Liste
	DaysDecoded   DayStatus = "decoded"   // Liste aus (mehrfach) kodiertem String gewonnen
	DaysRaw       DayStatus = "raw"       // kein JSON, String unverändert übernommen
	DaysDefault   DayStatus = "default"   // Platzhalter geliefert
	DaysExhausted DayStatus = "exhausted" // MaxUnwrapDepth erreicht
)

// DefaultDays liefert eine frische Platzhalter-Liste.
func DefaultDays() []string {
	return []string{DefaultDay}
}

// DecodeDayList gewinnt die Tagesliste eines Treks zurück, auch wenn das Feld
// ein- oder mehrfach als JSON-String kodiert wurde. Das Ergebnis ist nie nil.
func DecodeDayList(raw any) []string {
	days, _ := DecodeDayListStatus(raw)
	return days
}

// DecodeDayListStatus arbeitet wie DecodeDayList und meldet zusätzlich den Endzustand.
func DecodeDayListStatus(raw any) ([]string, DayStatus) {
	if isFalsy(raw) {
		return DefaultDays(), DaysDefault
	}

	switch v := raw.(type) {
	case []string:
		if len(v) == 0 {
			return DefaultDays(), DaysDefault
		}
		return v, DaysGiven
	case []any:
		if len(v) == 0 {
			return DefaultDays(), DaysDefault
		}
		return stringify(v), DaysGiven
	case string:
		return unwrap(v)
	}
	return DefaultDays(), DaysDefault
}

func unwrap(s string) ([]string, DayStatus) {
	current := s
	for attempt := 0; attempt < MaxUnwrapDepth; attempt++ {
		var parsed any
		if err := json.Unmarshal([]byte(current), &parsed); err != nil {
			if strings.TrimSpace(current) != "" {
				return []string{current}, DaysRaw
			}
			return DefaultDays(), DaysDefault
		}

		switch v := parsed.(type) {
		case []any:
			if len(v) == 0 {
				return DefaultDays(), DaysDefault
			}
			return stringify(v), DaysDecoded
		case string:
			current = v
		default:
			// Zahl, Objekt, bool oder null: keine Tagesliste
			return DefaultDays(), DaysDefault
		}
	}

	if strings.TrimSpace(current) != "" {
		return []string{current}, DaysExhausted
	}
	return []string{}, DaysExhausted
}

// stringify übernimmt Strings unverändert und schreibt alle anderen Elemente als JSON-Text.
func stringify(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
			out = append(out, "")
		default:
			b, err := json.Marshal(v)
			if err != nil {
				out = append(out, fmt.Sprint(v))
				continue
			}
			out = append(out, string(b))
		}
	}
	return out
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0
	case int:
		return x == 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	}
	return false
}
