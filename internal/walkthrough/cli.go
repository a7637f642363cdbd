package walkthrough

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/agrisiti/agrikit/pkg/logger"
)

// SetupLogging initializes the global logger for the walkthrough tool.
func SetupLogging(format string, verbose bool, w io.Writer) error {
	if err := logger.Init(logger.WithFormat(format), logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	return nil
}

// ShowHelp prints usage information for the walkthrough tool.
func ShowHelp() {
	os.Stdout.WriteString(`Agrikit Walkthrough
===================

Plays complete learner journeys against a running activities service:
the quiz, the rice matching board, the rice break-even calculator, the
Business Model Canvas and an offline journal sync.

Usage:
  walkthrough [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -learners int
        Number of simulated learners (default 1)
  -workers int
        Learners walking at once (default 4)
  -timeout duration
        HTTP request timeout (default 10s)
  -poll duration
        Quiz polling interval (default 50ms)
  -output string
        Write a JSON report of every scenario to this file
  -format string
        Log format, text or json (default "text")
  -verbose
        Log every passed scenario
  -help
        Show this help message
`)
}
