package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	defaultSubject = "Unknown"
	defaultTopic   = "Topic Missing"
	defaultHours   = 1.0
)

// Entry is one normalized plan line as produced by the model.
type Entry struct {
	Subject string  `json:"subject" jsonschema:"description=Subject name as given by the user"`
	Topic   string  `json:"topic" jsonschema:"description=Specific syllabus topic using syllabus wording"`
	Date    string  `json:"date" jsonschema:"description=Study date,pattern=^[0-9]{4}-[0-9]{2}-[0-9]{2}$"`
	Hours   float64 `json:"hours" jsonschema:"description=Hours allotted to the topic on that date,minimum=0"`
}

// Normalize fills every field of every item. Missing or blank text fields get
// placeholders, an unusable date becomes examDate and unusable hours become 1.
func Normalize(items []map[string]any, examDate string) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			Subject: textOr(item["subject"], defaultSubject),
			Topic:   textOr(item["topic"], defaultTopic),
			Date:    dateOr(item["date"], examDate),
			Hours:   hoursOr(item["hours"], defaultHours),
		})
	}
	return entries
}

func textOr(v any, fallback string) string {
	var s string
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		s = t
	case float64, json.Number, bool:
		s = fmt.Sprint(t)
	default:
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

func dateOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fallback
	}
	return s
}

func hoursOr(v any, fallback float64) float64 {
	var h float64
	switch t := v.(type) {
	case float64:
		h = t
	case int:
		h = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return fallback
		}
		h = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return fallback
		}
		h = parsed
	default:
		return fallback
	}
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return fallback
	}
	return h
}
