package walkthrough

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agrisiti/agrikit/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrFailed is returned when any journey did not finish as expected.
var ErrFailed = errors.New("walkthrough failed")

// Report is everything a run observed.
type Report struct {
	RunID    string    `json:"run_id"`
	BaseURL  string    `json:"base_url"`
	Outcomes []Outcome `json:"outcomes"`
}

// Run walks cfg.Learners learners through every activity and verifies the
// journal. It returns the statistics even when some journeys fail.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	normalize(cfg)
	log := logger.Named("walkthrough")
	stats := &Stats{StartTime: time.Now()}
	report := &Report{RunID: uuid.NewString(), BaseURL: cfg.BaseURL}

	log.Info(ctx, "starting walkthrough",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("runID", report.RunID),
		logger.Int("learners", cfg.Learners),
		logger.Int("workers", cfg.Workers))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	learners := make([]string, cfg.Learners)
	for i := range learners {
		learners[i] = fmt.Sprintf("walk-%s-%d", report.RunID[:8], i+1)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, learner := range learners {
		g.Go(func() error {
			outcomes := walk(gctx, cfg, learner, log)
			mu.Lock()
			report.Outcomes = append(report.Outcomes, outcomes...)
			mu.Unlock()
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("walkthrough interrupted: %w", err)
	}

	for _, o := range report.Outcomes {
		stats.Scenarios++
		if o.OK {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}

	stats.Scenarios++
	if err := verifyJournal(ctx, cfg, learners, stats); err != nil {
		stats.Failed++
		log.Error(ctx, "journal verification failed", logger.Error(err))
	} else {
		stats.Passed++
	}

	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d checks", ErrFailed, stats.Failed, stats.Scenarios)
	}
	return stats, nil
}

func normalize(cfg *Config) {
	if cfg.Learners <= 0 {
		cfg.Learners = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Poll <= 0 {
		cfg.Poll = DefaultPoll
	}
}

// walk runs every scenario for one learner.
func walk(ctx context.Context, cfg *Config, learner string, log logger.Logger) []Outcome {
	c := newHTTPClient(cfg.BaseURL, learner, cfg.Timeout)
	out := make([]Outcome, 0, len(scenarios))
	for _, s := range scenarios {
		start := time.Now()
		detail, err := s.run(ctx, c, cfg)
		o := Outcome{Learner: learner, Scenario: s.name, OK: err == nil, Detail: detail, Duration: time.Since(start)}
		if err != nil {
			o.Error = err.Error()
			log.Error(ctx, "scenario failed", logger.String("learner", learner), logger.String("scenario", s.name), logger.Error(err))
		} else if cfg.Verbose {
			log.Info(ctx, "scenario passed", logger.String("learner", learner), logger.String("scenario", s.name), logger.String("detail", detail))
		}
		out = append(out, o)
	}
	return out
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	c := newHTTPClient(cfg.BaseURL, "", cfg.Timeout)
	return c.get(ctx, "/healthz", new(string))
}

// verifyJournal waits for the asynchronous journal to hold each learner's
// offline event exactly once.
func verifyJournal(ctx context.Context, cfg *Config, learners []string, stats *Stats) error {
	deadline := time.Now().Add(cfg.Timeout + time.Second)
	for _, learner := range learners {
		c := newHTTPClient(cfg.BaseURL, learner, cfg.Timeout)
		want := learner + "-offline-quiz"
		for {
			list, err := journalEvents(ctx, c)
			if err != nil {
				return err
			}
			n := 0
			for _, e := range list.Events {
				if e.EventID == want {
					n++
				}
			}
			if n > 1 {
				return unexpected("%s journaled %d times", want, n)
			}
			if n == 1 {
				stats.JournalEvents += len(list.Events)
				stats.JournalSynced++
				break
			}
			if time.Now().After(deadline) {
				return unexpected("%s never reached the journal", want)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Poll):
			}
		}
	}
	return nil
}

// saveReport writes the run report as indented JSON.
func saveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("scenarios", stats.Scenarios),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Int("journalSynced", stats.JournalSynced),
		logger.Int("journalEvents", stats.JournalEvents),
		logger.Duration("duration", stats.Duration))
}
