package app

import (
	"context"
	"strings"
	"time"

	"studyplanner/internal/logger"
	"studyplanner/internal/model"
	"studyplanner/internal/planner"
)

const (
	emptyQuestionReply   = "Please type a question"
	defaultChatPlanLimit = 300
)

type ChatAnswerer interface {
	Answer(ctx context.Context, question string, plan []planner.PlanRow) (string, error)
}

// ChatRecorder persists transcript lines, either through the queue or directly.
type ChatRecorder interface {
	Record(ctx context.Context, msg model.ChatMessage) error
}

type ChatHistory interface {
	ListRecent(ctx context.Context, limit int) ([]model.ChatMessage, error)
}

type PlanRowSource interface {
	Rows(ctx context.Context, limit int) ([]planner.PlanRow, error)
}

type ChatService struct {
	assistant ChatAnswerer
	plans     PlanRowSource
	recorder  ChatRecorder
	history   ChatHistory
	planLimit int
	log       *logger.Logger
}

func NewChatService(
	assistant ChatAnswerer,
	plans PlanRowSource,
	recorder ChatRecorder,
	history ChatHistory,
	planLimit int,
	log *logger.Logger,
) *ChatService {
	if planLimit <= 0 {
		planLimit = defaultChatPlanLimit
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ChatService{
		assistant: assistant,
		plans:     plans,
		recorder:  recorder,
		history:   history,
		planLimit: planLimit,
		log:       log.With("component", "chat_service"),
	}
}

type ChatReply struct {
	Reply string `json:"reply"`
}

// Ask answers message using the stored plan and syllabus context. A blank
// message gets a prompt to ask something, without calling the model.
func (s *ChatService) Ask(ctx context.Context, message string) (*ChatReply, error) {
	question := strings.TrimSpace(message)
	if question == "" {
		return &ChatReply{Reply: emptyQuestionReply}, nil
	}

	rows, err := s.plans.Rows(ctx, s.planLimit)
	if err != nil {
		return nil, err
	}

	askedAt := time.Now().UTC()
	reply, err := s.assistant.Answer(ctx, question, rows)
	if err != nil {
		return nil, err
	}
	// Both lines are written only once the exchange is complete.
	s.record(ctx, model.ChatRoleUser, question, askedAt)
	s.record(ctx, model.ChatRoleAssistant, reply, time.Now().UTC())

	return &ChatReply{Reply: reply}, nil
}

func (s *ChatService) History(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	if s.history == nil {
		return []model.ChatMessage{}, nil
	}
	return s.history.ListRecent(ctx, limit)
}

// record never fails the request; a lost transcript line is only logged.
func (s *ChatService) record(ctx context.Context, role, content string, at time.Time) {
	if s.recorder == nil {
		return
	}
	msg := model.ChatMessage{Role: role, Content: content, CreatedAt: at}
	if err := s.recorder.Record(ctx, msg); err != nil {
		s.log.Warn("record chat message failed", "role", role, "error", err)
	}
}
