package walkthrough

import "time"

// Defaults used when Config leaves a field empty.
const (
	DefaultPoll        = 50 * time.Millisecond
	DefaultQuizTimeout = 30 * time.Second

	// Expected results of the scripted journeys.
	ExpectedBreakEven = 5
	ExpectedBusiness  = "Bola Farms"
	ExpectedQuizScore = "10/10"
)
