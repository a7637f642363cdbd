// Package walkthrough drives a running activities service through complete
// learner journeys over HTTP and reports what it saw.
package walkthrough

import "time"

// Config holds configuration for a walkthrough run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Learners   int           // Number of simulated learners
	Workers    int           // Learners running at once
	Timeout    time.Duration // HTTP request timeout
	Poll       time.Duration // Interval between quiz polls
	OutputFile string        // Optional JSON report path
	Verbose    bool          // Log every step
}

// Outcome is the result of one scenario for one learner.
type Outcome struct {
	Learner  string        `json:"learner"`
	Scenario string        `json:"scenario"`
	OK       bool          `json:"ok"`
	Detail   string        `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Stats holds run statistics.
type Stats struct {
	Scenarios      int
	Passed         int
	Failed         int
	JournalEvents  int
	JournalSynced  int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
