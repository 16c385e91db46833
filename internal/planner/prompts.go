package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"studyplanner/internal/rag"
)

const (
	retrievalSuffix = " syllabus units modules important topics"
	noContext       = "No syllabus context found."

	repairDirective = `

IMPORTANT FINAL WARNING:
Return ONLY JSON ARRAY.
No markdown, no explanation, no text.
Only output like:
[
  {"subject":"...","topic":"...","date":"YYYY-MM-DD","hours":2}
]
`
)

// entrySchema is the JSON schema of one plan entry, rendered once.
var entrySchema = sync.OnceValue(func() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Entry{})
	schema.Version = ""
	schema.ID = ""
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return `{"type":"object","required":["subject","topic","date","hours"]}`
	}
	return string(raw)
})

func retrievalQuery(subjects []string) string {
	return strings.Join(subjects, " ") + retrievalSuffix
}

// formatContext numbers retrieved chunks from 1 and separates them with a
// blank line.
func formatContext(results []rag.Result) string {
	if len(results) == 0 {
		return noContext
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Chunk %d] %s", i+1, r.Text)
	}
	return strings.Join(parts, "\n\n")
}

func buildPlanPrompt(req Request, context, today string) string {
	hours := formatHours(req.HoursPerDay)

	var b strings.Builder
	b.WriteString("You are an AI Study Planner Agent.\n\n")
	b.WriteString("You MUST create a DAY-WISE plan from today until the exam date.\n")
	b.WriteString("Each day MUST have topic names (not empty) and proper hours.\n\n")

	b.WriteString("STRICT OUTPUT RULES:\n")
	b.WriteString("1) Return ONLY a JSON array.\n")
	b.WriteString("2) No markdown, no explanation, no headings.\n")
	b.WriteString("3) Each object must contain EXACT keys:\n   subject, topic, date, hours\n")
	b.WriteString("4) date format: YYYY-MM-DD\n")
	b.WriteString("5) topic must be a proper syllabus topic name (NO \"Study\", NO \"Revise\" only).\n")
	fmt.Fprintf(&b, "6) Total hours per day must be <= %s (sum of same date).\n", hours)
	b.WriteString("7) Make sure EVERY DATE has at least 1 topic.\n")
	b.WriteString("8) If a day is revision day, topic should still be specific like:\n   \"Revision: Normalization + Transactions\"\n\n")

	b.WriteString("Each array element must satisfy this JSON schema:\n")
	b.WriteString(entrySchema())
	b.WriteString("\n\n")

	b.WriteString("Example output:\n")
	b.WriteString("[\n")
	b.WriteString(`  {"subject":"DBMS","topic":"Unit 1: ER Model + Relational Model","date":"2026-01-25","hours":2},` + "\n")
	b.WriteString(`  {"subject":"DBMS","topic":"Practice: ER to Table conversion","date":"2026-01-25","hours":1},` + "\n")
	b.WriteString(`  {"subject":"Deep Learning","topic":"CNN Basics + Architecture","date":"2026-01-26","hours":2},` + "\n")
	b.WriteString(`  {"subject":"Deep Learning","topic":"Numericals: CNN output size","date":"2026-01-26","hours":1}` + "\n")
	b.WriteString("]\n\n")

	b.WriteString("Syllabus Context (RAG chunks):\n")
	b.WriteString(context)
	b.WriteString("\n\n")

	b.WriteString("User Input:\n")
	fmt.Fprintf(&b, "Subjects: %s\n", strings.Join(req.Subjects, ", "))
	fmt.Fprintf(&b, "Exam Date: %s\n", req.ExamDate)
	fmt.Fprintf(&b, "Hours Per Day: %s\n", hours)
	fmt.Fprintf(&b, "Today: %s\n\n", today)

	b.WriteString("Planning rules:\n")
	b.WriteString("- Revision every 3rd day (but still topic-specific)\n")
	b.WriteString("- 1 mock test per week\n")
	b.WriteString("- Use syllabus wording for topic names\n")
	return b.String()
}

// promptVariants returns n prompts; variant k carries k repair directives.
func promptVariants(base string, n int) []string {
	variants := make([]string, n)
	prompt := base
	for i := range variants {
		variants[i] = prompt
		prompt += repairDirective
	}
	return variants
}

func buildChatPrompt(question, planJSON, context string) string {
	var b strings.Builder
	b.WriteString("You are an AI Study Mentor.\n\n")
	b.WriteString("User Question:\n")
	b.WriteString(question)
	b.WriteString("\n\nUser's Current Study Plan JSON:\n")
	b.WriteString(planJSON)
	b.WriteString("\n\nRelevant Syllabus Context (RAG chunks):\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString("Answer clearly and politely.\n")
	b.WriteString("Explain WHY a topic got more hours if asked.\n")
	b.WriteString("Give actionable advice.\n")
	b.WriteString("You help students with their study plans and questions.\n")
	b.WriteString("You have access to their CURRENT STUDY PLAN and RELEVANT SYLLABUS CONTEXT.\n")
	b.WriteString("You MUST answer based on these.\n")
	b.WriteString("You can greet the user if they greet you.\n")
	b.WriteString("Try to be concise and to the point.\n\n")
	b.WriteString("Add ONE small friendly joke at the end.\n")
	return b.String()
}

func formatHours(h float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".")
}
