package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"studyplanner/internal/bootstrap"
	"studyplanner/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := bootstrap.New(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	root := cli.NewRootCmd(&cli.App{
		Syllabus: application.Syllabus,
		Plans:    application.Plans,
		Chat:     application.Chat,
		Plain:    !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()),
	})
	return root.ExecuteContext(ctx)
}
