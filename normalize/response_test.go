package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNormalize_AllShapesYieldSameItems(t *testing.T) {
	want := decode(t, `[{"id":1,"title":"Everest Base Camp"},{"id":2,"title":"Annapurna Circuit"}]`)

	bodies := map[string]string{
		"bare list":            `[{"id":1,"title":"Everest Base Camp"},{"id":2,"title":"Annapurna Circuit"}]`,
		"data list":            `{"data":[{"id":1,"title":"Everest Base Camp"},{"id":2,"title":"Annapurna Circuit"}]}`,
		"nested collection":    `{"success":true,"data":{"treks":[{"id":1,"title":"Everest Base Camp"},{"id":2,"title":"Annapurna Circuit"}],"pagination":{"page":1}}}`,
		"top-level collection": `{"treks":[{"id":1,"title":"Everest Base Camp"},{"id":2,"title":"Annapurna Circuit"}]}`,
		"top-level items":      `{"items":[{"id":1,"title":"Everest Base Camp"},{"id":2,"title":"Annapurna Circuit"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Normalize(decode(t, body), "treks"))
		})
	}
}

func TestNormalize_InvalidInputsReturnEmpty(t *testing.T) {
	for _, in := range []any{nil, 42.0, "x", true, map[string]any(nil)} {
		got := Normalize(in, "treks")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestNormalize_NestedWithPagination(t *testing.T) {
	got := Normalize(decode(t, `{"success":true,"data":{"treks":[{"id":1}],"pagination":{"page":1}}}`), "treks")
	assert.Equal(t, []any{map[string]any{"id": 1.0}}, got)
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantShape Shape
		wantLen   int
	}{
		{"bare list", `[{"id":1}]`, ShapeList, 1},
		{"empty bare list", `[]`, ShapeList, 0},
		{"data list", `{"data":[{"id":1},{"id":2}]}`, ShapeData, 2},
		{"nested collection", `{"data":{"activities":[{"id":1}]}}`, ShapeNested, 1},
		{"nested items", `{"data":{"items":[{"id":1}]}}`, ShapeNested, 1},
		{"nested collection wins over items", `{"data":{"activities":[{"id":1}],"items":[{"id":2},{"id":3}]}}`, ShapeNested, 1},
		{"data object without list", `{"data":{"activities":"nope"},"activities":[{"id":1}]}`, ShapeUnknown, 0},
		{"data null falls through", `{"data":null,"activities":[{"id":1}]}`, ShapeFlat, 1},
		{"data string falls through", `{"data":"x","items":[{"id":1}]}`, ShapeFlat, 1},
		{"flat collection", `{"activities":[{"id":1}]}`, ShapeFlat, 1},
		{"object without list", `{"success":false,"message":"boom"}`, ShapeUnknown, 0},
		{"null", `null`, ShapeUnknown, 0},
		{"number", `42`, ShapeUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, shape := Inspect(decode(t, tt.body), "activities")
			assert.Equal(t, tt.wantShape, shape)
			assert.Len(t, items, tt.wantLen)
			assert.NotNil(t, items)
		})
	}
}

func TestInspect_DataListPrecedesCollection(t *testing.T) {
	items, shape := Inspect(decode(t, `{"data":[{"id":1}],"treks":[{"id":2},{"id":3}]}`), "treks")
	assert.Equal(t, ShapeData, shape)
	assert.Len(t, items, 1)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "list", ShapeList.String())
	assert.Equal(t, "nested", ShapeNested.String())
	assert.Equal(t, "unknown", Shape(99).String())
}

func TestSingle(t *testing.T) {
	assert.Equal(t, map[string]any{"slug": "a"}, Single(decode(t, `{"data":{"slug":"a"}}`)))
	assert.Equal(t, map[string]any{"slug": "b"}, Single(decode(t, `{"slug":"b"}`)))
	assert.Equal(t, map[string]any{"data": []any{}}, Single(decode(t, `{"data":[]}`)))
	assert.Nil(t, Single(decode(t, `[1,2]`)))
	assert.Nil(t, Single(nil))
}
