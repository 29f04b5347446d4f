package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  uint
		ok    bool
	}{
		{"json number", float64(7), 7, true},
		{"int", 7, 7, true},
		{"uint", uint(7), 7, true},
		{"numeric string", "42", 42, true},
		{"object with id", map[string]interface{}{"id": float64(9)}, 9, true},
		{"object with _id", map[string]interface{}{"_id": "13"}, 13, true},
		{"nested object id", map[string]interface{}{"id": map[string]interface{}{"id": float64(5)}}, 5, true},
		{"nil", nil, 0, false},
		{"zero", float64(0), 0, false},
		{"negative", float64(-1), 0, false},
		{"fractional", float64(1.5), 0, false},
		{"non-numeric string", "abc", 0, false},
		{"object without id", map[string]interface{}{"name": "x"}, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeID(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIDList(t *testing.T) {
	ids := NormalizeIDList([]interface{}{
		float64(3),
		"1",
		map[string]interface{}{"id": float64(3)}, // duplicate via object shape
		nil,
		float64(2),
	})

	assert.Equal(t, []uint{3, 1, 2}, ids, "first-seen order, duplicates and junk dropped")
}
