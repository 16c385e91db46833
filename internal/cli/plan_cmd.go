package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"studyplanner/internal/planner"
)

func newPlanCmd(app *App) *cobra.Command {
	var subjects []string
	var examDate string
	var hours float64

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a new study plan from the indexed syllabus",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Plans.Generate(cmd.Context(), planner.Request{
				Subjects:    subjects,
				ExamDate:    examDate,
				HoursPerDay: hours,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, app.render(styleGreen, "Plan generated from syllabus (RAG)!"))
			fmt.Fprint(out, app.planTable(items))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&subjects, "subject", nil, "Subject to plan for (repeatable or comma separated)")
	cmd.Flags().StringVar(&examDate, "exam-date", "", "Exam date, YYYY-MM-DD")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Study hours available per day")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("exam-date")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List stored study plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Plans.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plans yet. Run plannerctl plan to create one.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), app.planTable(items))
			return nil
		},
	}

	cmd.AddCommand(
		newPlansNextCmd(app),
		newPlansTodayCmd(app),
		newPlansDoneCmd(app),
		newPlansDeleteCmd(app),
		newPlansClearCmd(app),
	)

	return cmd
}

func newPlansNextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the earliest pending topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := app.Plans.Next(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if next == nil {
				fmt.Fprintln(out, "No pending tasks found! You can revise or take a mock test")
				return nil
			}
			fmt.Fprintln(out, "You should work on this topic now:")
			fmt.Fprintf(out, "  %s: %s on %s (%s h)\n",
				app.render(styleHeader, next.Subject), next.Topic, next.StudyDate,
				strconv.FormatFloat(next.Hours, 'f', -1, 64))
			return nil
		},
	}
}

func newPlansTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show up to three goals for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, err := app.Plans.DailyGoals(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daily Goal Mode (%s): Complete these 3 topics today\n", goals.Today)
			fmt.Fprint(out, app.planTable(goals.Goals))
			return nil
		},
	}
}

func newPlansDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a plan as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			if err := app.Plans.MarkDone(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan %d marked as done\n", id)
			return nil
		},
	}
}

func newPlansDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			if err := app.Plans.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan %d deleted\n", id)
			return nil
		},
	}
}

func newPlansClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Plans.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All plans deleted successfully!")
			return nil
		},
	}
}

func parsePlanID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid plan id %q", raw)
	}
	return uint(id), nil
}
