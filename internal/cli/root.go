package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"studyplanner/internal/app"
	"studyplanner/internal/model"
	"studyplanner/internal/planner"
	"studyplanner/internal/rag"
)

type SyllabusService interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*app.UploadResult, error)
	Search(ctx context.Context, query string, topK int) ([]rag.Result, error)
}

type PlanService interface {
	Generate(ctx context.Context, req planner.Request) ([]model.PlanItem, error)
	List(ctx context.Context) ([]model.PlanItem, error)
	MarkDone(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) error
	Next(ctx context.Context) (*model.PlanItem, error)
	DailyGoals(ctx context.Context) (*app.DailyGoals, error)
}

type ChatService interface {
	Ask(ctx context.Context, message string) (*app.ChatReply, error)
}

// App holds the services used by CLI commands.
type App struct {
	Syllabus SyllabusService
	Plans    PlanService
	Chat     ChatService

	// Plain disables terminal styling.
	Plain bool
}

// NewRootCmd creates the top-level "plannerctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Index syllabi, generate study plans and ask the study assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newIndexCmd(app),
		newSearchCmd(app),
		newPlanCmd(app),
		newPlansCmd(app),
		newAskCmd(app),
	)

	return root
}
