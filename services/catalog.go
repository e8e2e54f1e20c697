package services

import (
	"sort"
	"strings"
	"unicode"

	"jamjam-trek/models"
)

// SortOrder ist die Sortierung der Listen auf der öffentlichen Seite.
type SortOrder string

const (
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortDuration  SortOrder = "duration"
)

// ParseSortOrder liest die Sortierung aus der Query; Unbekanntes ergibt price-low.
func ParseSortOrder(s string) SortOrder {
	switch o := SortOrder(strings.TrimSpace(s)); o {
	case SortPriceHigh, SortDuration:
		return o
	}
	return SortPriceLow
}

// FilterTreks behält Treks des gewünschten data_type; "" und "all" behalten alle.
func FilterTreks(treks []models.Trek, kind string) []models.Trek {
	out := make([]models.Trek, 0, len(treks))
	for _, t := range treks {
		if kind == "" || kind == "all" || t.DataType == kind {
			out = append(out, t)
		}
	}
	return out
}

// FilterActivities behält Aktivitäten einer Kategorie; "" und "all" behalten alle.
func FilterActivities(acts []models.Activity, category string) []models.Activity {
	out := make([]models.Activity, 0, len(acts))
	for _, a := range acts {
		if category == "" || category == "all" || a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Categories liefert die Kategorien in der Reihenfolge ihres ersten Auftretens.
func Categories(acts []models.Activity) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, a := range acts {
		if a.Category == "" || seen[a.Category] {
			continue
		}
		seen[a.Category] = true
		out = append(out, a.Category)
	}
	return out
}

// SortTreks sortiert eine Kopie der Treks stabil.
func SortTreks(treks []models.Trek, order SortOrder) []models.Trek {
	out := append([]models.Trek{}, treks...)
	sort.SliceStable(out, func(i, j int) bool {
		return less(order, float64(out[i].Price), float64(out[j].Price), out[i].Duration, out[j].Duration)
	})
	return out
}

// SortActivities sortiert eine Kopie der Aktivitäten stabil.
func SortActivities(acts []models.Activity, order SortOrder) []models.Activity {
	out := append([]models.Activity{}, acts...)
	sort.SliceStable(out, func(i, j int) bool {
		return less(order, float64(out[i].Price), float64(out[j].Price), out[i].Duration, out[j].Duration)
	})
	return out
}

func less(order SortOrder, priceA, priceB float64, durA, durB string) bool {
	switch order {
	case SortPriceHigh:
		return priceA > priceB
	case SortDuration:
		return LeadingInt(durA) < LeadingInt(durB)
	default:
		return priceA < priceB
	}
}

// LeadingInt liest die führende Ganzzahl wie parseInt ("14 days" -> 14, "ca. 5" -> 0).
func LeadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}

// FindTrek sucht einen Trek über seine ID.
func FindTrek(treks []models.Trek, id int) (*models.Trek, bool) {
	for i := range treks {
		if treks[i].ID == id {
			return &treks[i], true
		}
	}
	return nil, false
}

// Featured liefert die ersten limit Treks.
func Featured(treks []models.Trek, limit int) []models.Trek {
	if limit < 0 || limit >= len(treks) {
		return append([]models.Trek{}, treks...)
	}
	return append([]models.Trek{}, treks[:limit]...)
}

// BlogSections liefert die Inhaltsabschnitte ohne den Abschnitt "conclusion",
// der separat dargestellt wird.
func BlogSections(blog *models.Blog) []models.BlogSection {
	out := []models.BlogSection{}
	if blog == nil {
		return out
	}
	for _, s := range blog.Content {
		if strings.EqualFold(strings.TrimSpace(s.Heading), "conclusion") {
			continue
		}
		out = append(out, s)
	}
	return out
}

// DifficultyLevel ordnet eine Freitext-Schwierigkeit einer Stufe zu.
func DifficultyLevel(s string) string {
	d := strings.ToLower(s)
	switch {
	case strings.Contains(d, "challenging"), strings.Contains(d, "hard"), strings.Contains(d, "difficult"):
		return "challenging"
	case strings.Contains(d, "moderate"), strings.Contains(d, "medium"):
		return "moderate"
	case strings.Contains(d, "easy"):
		return "easy"
	}
	return "unknown"
}
