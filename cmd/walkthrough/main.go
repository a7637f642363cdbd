package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrisiti/agrikit/internal/walkthrough"
)

// Default configuration constants.
const (
	defaultLearners   = 1
	defaultWorkers    = 4
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		learners = flag.Int("learners", defaultLearners, "Number of simulated learners")
		workers  = flag.Int("workers", defaultWorkers, "Learners walking at once")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		poll     = flag.Duration("poll", walkthrough.DefaultPoll, "Quiz polling interval")
		output   = flag.String("output", "", "JSON report file")
		format   = flag.String("format", "text", "Log format: text or json")
		verbose  = flag.Bool("verbose", false, "Log every passed scenario")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		walkthrough.ShowHelp()
		return
	}

	if err := walkthrough.SetupLogging(*format, *verbose, os.Stdout); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &walkthrough.Config{
		BaseURL:    *baseURL,
		Learners:   *learners,
		Workers:    *workers,
		Timeout:    *timeout,
		Poll:       *poll,
		OutputFile: *output,
		Verbose:    *verbose,
	}
	if _, err := walkthrough.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Walkthrough failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
