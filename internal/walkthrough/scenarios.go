package walkthrough

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/canvas"
	"github.com/agrisiti/agrikit/internal/domain/costs"
	"github.com/agrisiti/agrikit/internal/domain/matching"
	"github.com/agrisiti/agrikit/internal/domain/model"
	"github.com/agrisiti/agrikit/internal/domain/quiz"
)

// Scenario names.
const (
	ScenarioQuiz     = "quiz"
	ScenarioMatching = "matching"
	ScenarioCosts    = "costs"
	ScenarioCanvas   = "canvas"
	ScenarioJournal  = "journal"
)

// ErrUnexpected marks a journey that reached a state it should not.
var ErrUnexpected = errors.New("unexpected result")

// scenario runs one journey and returns a short detail line.
type scenario func(ctx context.Context, c *HTTPClient, cfg *Config) (string, error)

// scenarios run in order for every learner; canvas relies on the costs
// journey having stored a break-even result.
var scenarios = []struct {
	name string
	run  scenario
}{
	{ScenarioQuiz, playQuiz},
	{ScenarioMatching, playMatching},
	{ScenarioCosts, playCosts},
	{ScenarioCanvas, buildCanvas},
	{ScenarioJournal, syncJournal},
}

func unexpected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpected, fmt.Sprintf(format, args...))
}

// playQuiz answers every statement correctly, waiting out each feedback pause.
func playQuiz(ctx context.Context, c *HTTPClient, cfg *Config) (string, error) {
	var env envelope[quiz.View]
	if err := c.create(ctx, "/v1/quiz", nil, &env); err != nil {
		return "", err
	}
	base := "/v1/quiz/" + env.SessionID
	defer func() { _ = c.end(context.WithoutCancel(ctx), base) }()

	if err := c.post(ctx, base+"/start", nil, &env); err != nil {
		return "", err
	}
	deadline := time.Now().Add(DefaultQuizTimeout)
	for env.View.Screen != quiz.ScreenResults {
		if time.Now().After(deadline) {
			return "", unexpected("quiz stuck at statement %d", env.View.Index+1)
		}
		if env.View.Locked {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(cfg.Poll):
			}
			if err := c.get(ctx, base, &env); err != nil {
				return "", err
			}
			continue
		}
		choice := quiz.Items[env.View.Index].Correct
		if err := c.post(ctx, base+"/answer", map[string]string{"choice": string(choice)}, &env); err != nil {
			return "", err
		}
	}
	if env.View.FinalScore != ExpectedQuizScore {
		return "", unexpected("quiz score %s", env.View.FinalScore)
	}
	return "score " + env.View.FinalScore, nil
}

// playMatching places every rice need on its customer with the keyboard.
func playMatching(ctx context.Context, c *HTTPClient, _ *Config) (string, error) {
	var env envelope[matching.View]
	if err := c.create(ctx, "/v1/matching", map[string]string{"domain": matching.Rice}, &env); err != nil {
		return "", err
	}
	base := "/v1/matching/" + env.SessionID
	defer func() { _ = c.end(context.WithoutCancel(ctx), base) }()

	tray := env.View.Tray
	for _, need := range tray {
		if err := c.post(ctx, base+"/pick", map[string]string{"need_id": need.ID}, &env); err != nil {
			return "", err
		}
		if err := c.post(ctx, base+"/zone", map[string]string{"zone_id": need.MatchTo}, &env); err != nil {
			return "", err
		}
		if env.Result != string(matching.Matched) {
			return "", unexpected("need %s on %s: %s", need.ID, need.MatchTo, env.Result)
		}
	}
	if env.View.Screen != matching.ScreenDone {
		return "", unexpected("board not complete: %s", env.View.MatchCount)
	}
	return env.View.MatchCount, nil
}

// playCosts selects land preparation and seeds and prices a unit at 10,000.
func playCosts(ctx context.Context, c *HTTPClient, _ *Config) (string, error) {
	var env envelope[costs.View]
	if err := c.create(ctx, "/v1/costs", map[string]string{"domain": costs.Rice}, &env); err != nil {
		return "", err
	}
	base := "/v1/costs/" + env.SessionID
	defer func() { _ = c.end(context.WithoutCancel(ctx), base) }()

	for _, i := range []int{0, 1} {
		if err := c.post(ctx, base+"/toggle", map[string]int{"index": i}, &env); err != nil {
			return "", err
		}
	}
	if err := c.post(ctx, base+"/calc", nil, &env); err != nil {
		return "", err
	}
	if err := c.post(ctx, base+"/break-even", map[string]string{"price": "10,000"}, &env); err != nil {
		return "", err
	}
	if env.View.Result.Units != ExpectedBreakEven {
		return "", unexpected("break-even %d units", env.View.Result.Units)
	}

	var page string
	if err := c.get(ctx, base+"/summary", &page); err != nil {
		return "", err
	}
	if !strings.Contains(page, "Land preparation") {
		return "", unexpected("summary is missing the selected costs")
	}
	return fmt.Sprintf("%s break even at %d units", env.View.TotalText, env.View.Result.Units), nil
}

// buildCanvas walks the nine boxes in order, names the business and prints it.
func buildCanvas(ctx context.Context, c *HTTPClient, _ *Config) (string, error) {
	var env envelope[canvas.View]
	if err := c.create(ctx, "/v1/canvas", nil, &env); err != nil {
		return "", err
	}
	base := "/v1/canvas/" + env.SessionID
	defer func() { _ = c.end(context.WithoutCancel(ctx), base) }()

	if err := c.post(ctx, base+"/start", nil, &env); err != nil {
		return "", err
	}
	for _, box := range canvas.Boxes {
		// Take the suggestion where one exists so stored costs flow into the plan.
		if err := c.post(ctx, base+"/suggestion", nil, &env); err != nil {
			return "", err
		}
		draft := canvas.Draft{Text: "Our " + strings.ToLower(box.Title)}
		if box.Kind == canvas.MultiSelect {
			draft = canvas.Draft{Checked: box.Options[:2]}
		}
		if ed := env.View.Editor; ed != nil && ed.Text != "" && box.Kind != canvas.MultiSelect {
			draft.Text = ed.Text
		}
		if err := c.post(ctx, base+"/save", draft, &env); err != nil {
			return "", err
		}
	}
	if env.View.Phase != canvas.AwaitingBusinessName {
		return "", unexpected("canvas phase %s after nine boxes", env.View.Phase)
	}
	finish := map[string]string{"business_name": ExpectedBusiness, "user_name": c.learner}
	if err := c.post(ctx, base+"/finish", finish, &env); err != nil {
		return "", err
	}

	var page string
	if err := c.get(ctx, base+"/print", &page); err != nil {
		return "", err
	}
	if !strings.Contains(page, ExpectedBusiness) {
		return "", unexpected("printed canvas is missing the business name")
	}
	return fmt.Sprintf("%s, badges %v", env.View.Progress, env.View.Badges), nil
}

type journalAck struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type journalList struct {
	Events []struct {
		EventID string `json:"event_id"`
		Kind    string `json:"kind"`
	} `json:"events"`
}

// syncJournal replays an offline score twice and checks it is kept once.
func syncJournal(ctx context.Context, c *HTTPClient, _ *Config) (string, error) {
	path := "/v1/learners/" + c.learner + "/journal"
	event := map[string]any{
		"event_id": c.learner + "-offline-quiz",
		"activity": model.ActivityQuiz,
		"kind":     model.KindQuizFinished,
		"score":    10,
		"detail":   map[string]string{"source": "offline"},
		"ts":       time.Now().UTC().Format(time.RFC3339),
	}
	var ack journalAck
	if err := c.do(ctx, http.MethodPost, path, event, &ack, http.StatusAccepted); err != nil {
		return "", err
	}
	if err := c.do(ctx, http.MethodPost, path, event, &ack, http.StatusOK); err != nil {
		return "", err
	}
	if !ack.Duplicate {
		return "", unexpected("replayed event was not flagged as duplicate")
	}
	return "offline event synced once", nil
}

// journalEvents lists the learner's journal.
func journalEvents(ctx context.Context, c *HTTPClient) (journalList, error) {
	var list journalList
	err := c.get(ctx, "/v1/learners/"+c.learner+"/journal?limit=500", &list)
	return list, err
}
