// Package normalize enthält die reinen Hilfsfunktionen, mit denen uneinheitliche
// Antworten der Trek-API in eine feste Form gebracht werden.
//
// Eingaben sind Werte, wie sie encoding/json beim Dekodieren in ein `any` erzeugt:
// []any, map[string]any, string, float64/json.Number, bool und nil.
package normalize

// Shape beschreibt, in welcher Variante eine Listen-Antwort gefunden wurde.
type Shape int

const (
	// ShapeUnknown: keine der bekannten Varianten hat eine Liste geliefert.
	ShapeUnknown Shape = iota
	// ShapeList: die Antwort ist selbst eine Liste.
	ShapeList
	// ShapeData: {"data": [...]}
	ShapeData
	// ShapeNested: {"data": {"<collection>": [...]}} oder {"data": {"items": [...]}}
	ShapeNested
	// ShapeFlat: {"<collection>": [...]} oder {"items": [...]}
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeData:
		return "data"
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Normalize extrahiert die Item-Liste aus einer Antwort beliebiger Form.
// Das Ergebnis ist nie nil; unbekannte Formen ergeben eine leere Liste.
func Normalize(response any, collection string) []any {
	items, _ := Inspect(response, collection)
	return items
}

// Inspect arbeitet wie Normalize, liefert aber zusätzlich die erkannte Variante.
// Die Reihenfolge der Prüfungen ist fest: Liste, data-Liste, data-Objekt, Top-Level-Objekt.
func Inspect(response any, collection string) ([]any, Shape) {
	if list, ok := response.([]any); ok {
		return nonNil(list), ShapeList
	}

	obj, ok := response.(map[string]any)
	if !ok || obj == nil {
		return []any{}, ShapeUnknown
	}

	switch data := obj["data"].(type) {
	case []any:
		return nonNil(data), ShapeData
	case map[string]any:
		if data == nil {
			break
		}
		if list, ok := pick(data, collection); ok {
			return list, ShapeNested
		}
		return []any{}, ShapeUnknown
	}

	if list, ok := pick(obj, collection); ok {
		return list, ShapeFlat
	}
	return []any{}, ShapeUnknown
}

// Single entpackt eine Einzel-Antwort: "data", wenn es ein Objekt ist, sonst die Antwort selbst.
func Single(response any) map[string]any {
	obj, ok := response.(map[string]any)
	if !ok || obj == nil {
		return nil
	}
	if data, ok := obj["data"].(map[string]any); ok && data != nil {
		return data
	}
	return obj
}

// pick sucht zuerst obj[collection], dann obj["items"].
func pick(obj map[string]any, collection string) ([]any, bool) {
	if collection != "" {
		if list, ok := obj[collection].([]any); ok {
			return nonNil(list), true
		}
	}
	if list, ok := obj["items"].([]any); ok {
		return nonNil(list), true
	}
	return nil, false
}

func nonNil(list []any) []any {
	if list == nil {
		return []any{}
	}
	return list
}
