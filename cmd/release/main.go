// Package main is the entry point for the release CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/mishamyrt/commitfmt-release/cmd/release/commands"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.ExecuteContext(ctx)
	stop()

	if err != nil {
		exitErr := errors.Classify(err)
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), exitErr.Error())
		if exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		os.Exit(exitErr.Code)
	}
}
