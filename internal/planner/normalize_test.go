package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_FillsMissingFields(t *testing.T) {
	entries := Normalize([]map[string]any{{}}, "2026-02-10")
	assert.Equal(t, []Entry{{Subject: "Unknown", Topic: "Topic Missing", Date: "2026-02-10", Hours: 1}}, entries)
}

func TestNormalize_MissingHoursAndDate(t *testing.T) {
	entries := Normalize([]map[string]any{{"subject": "OS", "topic": "Paging"}}, "2026-02-10")
	assert.Equal(t, 1.0, entries[0].Hours)
	assert.Equal(t, "2026-02-10", entries[0].Date)
}

func TestNormalize_FieldCoercion(t *testing.T) {
	cases := []struct {
		name string
		in   map[string]any
		want Entry
	}{
		{
			name: "null and blank text",
			in:   map[string]any{"subject": nil, "topic": "   ", "date": "2026-01-21", "hours": 2.0},
			want: Entry{Subject: "Unknown", Topic: "Topic Missing", Date: "2026-01-21", Hours: 2},
		},
		{
			name: "trimmed text",
			in:   map[string]any{"subject": " DBMS ", "topic": "Joins\n", "date": " 2026-01-21 ", "hours": 1.5},
			want: Entry{Subject: "DBMS", Topic: "Joins", Date: "2026-01-21", Hours: 1.5},
		},
		{
			name: "invalid date",
			in:   map[string]any{"subject": "A", "topic": "B", "date": "Jan 21", "hours": 1.0},
			want: Entry{Subject: "A", Topic: "B", Date: "2026-02-10", Hours: 1},
		},
		{
			name: "numeric string hours",
			in:   map[string]any{"subject": "A", "topic": "B", "date": "2026-01-21", "hours": "2.5"},
			want: Entry{Subject: "A", Topic: "B", Date: "2026-01-21", Hours: 2.5},
		},
		{
			name: "non numeric hours",
			in:   map[string]any{"subject": "A", "topic": "B", "date": "2026-01-21", "hours": "two"},
			want: Entry{Subject: "A", Topic: "B", Date: "2026-01-21", Hours: 1},
		},
		{
			name: "negative hours",
			in:   map[string]any{"subject": "A", "topic": "B", "date": "2026-01-21", "hours": -3.0},
			want: Entry{Subject: "A", Topic: "B", Date: "2026-01-21", Hours: 1},
		},
		{
			name: "json number hours and numeric subject",
			in:   map[string]any{"subject": 101.0, "topic": "B", "date": "2026-01-21", "hours": json.Number("0")},
			want: Entry{Subject: "101", Topic: "B", Date: "2026-01-21", Hours: 0},
		},
		{
			name: "object hours",
			in:   map[string]any{"subject": "A", "topic": map[string]any{"x": 1}, "date": 20260121.0, "hours": []any{2}},
			want: Entry{Subject: "A", Topic: "Topic Missing", Date: "2026-02-10", Hours: 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize([]map[string]any{tc.in}, "2026-02-10")
			assert.Equal(t, []Entry{tc.want}, got)
		})
	}
}

func TestNormalize_PreservesOrder(t *testing.T) {
	entries := Normalize([]map[string]any{
		{"topic": "first"},
		{"topic": "second"},
		{"topic": "third"},
	}, "2026-02-10")
	assert.Equal(t, "first", entries[0].Topic)
	assert.Equal(t, "third", entries[2].Topic)
}
