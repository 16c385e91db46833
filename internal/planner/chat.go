package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"studyplanner/internal/logger"
)

const DefaultChatTopK = 5

// PlanRow is a stored plan line as shown to the chat model.
type PlanRow struct {
	Subject string  `json:"subject"`
	Topic   string  `json:"topic"`
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	Status  string  `json:"status"`
}

// ChatAssistant answers study questions from the stored plan and syllabus
// context with one model call.
type ChatAssistant struct {
	model     Model
	retriever Retriever
	topK      int
	log       *logger.Logger
}

func NewChatAssistant(model Model, retriever Retriever, topK int, log *logger.Logger) *ChatAssistant {
	if topK <= 0 {
		topK = DefaultChatTopK
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ChatAssistant{model: model, retriever: retriever, topK: topK, log: log.With("component", "chat_assistant")}
}

// Answer returns the model reply verbatim.
func (a *ChatAssistant) Answer(ctx context.Context, question string, plan []PlanRow) (string, error) {
	if plan == nil {
		plan = []PlanRow{}
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("marshal plan context failed: %w", err)
	}

	results := a.retriever.Search(ctx, question, a.topK)
	prompt := buildChatPrompt(question, string(planJSON), formatContext(results))

	reply, err := a.model.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}
	a.log.Debug("chat answered", "plan_rows", len(plan), "context_chunks", len(results))
	return reply, nil
}
