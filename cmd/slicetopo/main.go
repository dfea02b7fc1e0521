package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/internal/cli"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
)

// Exit codes by error class.
const (
	exitError       = 1
	exitInput       = 2
	exitInvalid     = 3
	exitNotFound    = 4
	exitUpstream    = 5
	exitInterrupted = 130 // shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		os.Exit(report(os.Stderr, err))
	}
}

// report prints err for the user and returns the process exit code.
func report(w io.Writer, err error) int {
	code := exitCode(err)
	if code == exitInterrupted {
		return code
	}
	// Input errors print the bare message; other codes stay in brackets.
	if e, ok := err.(*apperrors.Error); ok {
		msg := e.Message
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
		if code == exitInput {
			fmt.Fprintln(w, "Error:", msg)
		} else {
			fmt.Fprintf(w, "Error [%s]: %s\n", e.Code, msg)
		}
		return code
	}
	fmt.Fprintln(w, "Error:", err)
	return code
}

func exitCode(err error) int {
	var verr *apperrors.ValidationError
	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.As(err, &verr):
		return exitInvalid
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidConnection, apperrors.ErrCodeInvalidPreset,
		apperrors.ErrCodeInvalidImport, apperrors.ErrCodeInvalidConfig, apperrors.ErrCodeInvalidPath:
		return exitInput
	case apperrors.ErrCodeValidationFailed:
		return exitInvalid
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeDraftNotFound:
		return exitNotFound
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeTimeout, apperrors.ErrCodeHTTPStatus, apperrors.ErrCodeSubmissionInProgress:
		return exitUpstream
	}
	return exitError
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The level is only known after flag parsing.
	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
