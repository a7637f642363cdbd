// Package matching implements the customer-needs matching game: four
// customer drop zones, four shuffled need cards, a pointer drag protocol with
// hit testing against freshly measured geometry, and a keyboard alternative.
package matching

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/cue"
	"github.com/agrisiti/agrikit/internal/domain/hints"
	"github.com/agrisiti/agrikit/internal/domain/localstore"
)

// Toasts shown under the board.
const (
	ToastCorrect  = "Correct match! ✓"
	ToastWrong    = "Not quite — try a different customer."
	ToastSelected = "Selected a need. Now click a customer drop area to place it."
)

// Screen is the visible game screen.
type Screen string

const (
	ScreenIntro Screen = "intro"
	ScreenGame  Screen = "game"
	ScreenDone  Screen = "done"
)

// Result classifies the outcome of a drop.
type Result string

const (
	Ignored  Result = "ignored"
	Returned Result = "returned"
	Matched  Result = "matched"
	Mismatch Result = "mismatch"
)

// Drag is an in-flight pointer drag of one card.
type Drag struct {
	PointerID int    `json:"pointer_id"`
	NeedID    string `json:"need_id"`
	HomeIndex int    `json:"home_index"`
	Offset    Point  `json:"offset"`
	Position  Point  `json:"position"`
}

// ZoneView is one customer and its drop area.
type ZoneView struct {
	Customer
	Matched bool   `json:"matched"`
	NeedID  string `json:"need_id,omitempty"`
	Over    bool   `json:"over"`
}

// View is the render model of a game.
type View struct {
	Screen       Screen           `json:"screen"`
	Domain       string           `json:"domain,omitempty"`
	Label        string           `json:"label,omitempty"`
	Zones        []ZoneView       `json:"zones"`
	Tray         []Need           `json:"tray"`
	Matches      int              `json:"matches"`
	MatchCount   string           `json:"match_count"`
	Drag         *Drag            `json:"drag,omitempty"`
	Picked       string           `json:"picked,omitempty"`
	Toast        string           `json:"toast"`
	Announcement string           `json:"announcement,omitempty"`
	DoneText     string           `json:"done_text,omitempty"`
	Shake        string           `json:"shake,omitempty"`
	ShakeMS      int              `json:"shake_ms,omitempty"`
	Celebration  *cue.Celebration `json:"celebration,omitempty"`
	Sound        bool             `json:"sound"`
}

// DropFunc observes every evaluated drop.
type DropFunc func(domain, needID, zoneID string, correct bool)

// CompleteFunc observes a finished board.
type CompleteFunc func(domain string)

// Option configures a Game.
type Option func(*Game)

// WithRand sets the shuffle source.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithStorage sets where the chosen domain is recorded for the canvas.
func WithStorage(s localstore.Storage) Option {
	return func(g *Game) { g.store = s }
}

// WithPlayer sets the tone sink.
func WithPlayer(p cue.Player) Option {
	return func(g *Game) { g.player = p }
}

// WithSound sets the initial sound toggle.
func WithSound(on bool) Option {
	return func(g *Game) { g.sound = on }
}

// WithOnDrop registers a drop hook. It runs with the game locked.
func WithOnDrop(fn DropFunc) Option {
	return func(g *Game) { g.onDrop = fn }
}

// WithOnComplete registers a completion hook. It runs with the game locked.
func WithOnComplete(fn CompleteFunc) Option {
	return func(g *Game) { g.onComplete = fn }
}

type zone struct {
	customer Customer
	needID   string
	over     bool
}

// Game is one learner's matching board.
type Game struct {
	mu sync.Mutex

	rng        *rand.Rand
	store      localstore.Storage
	player     cue.Player
	sound      bool
	onDrop     DropFunc
	onComplete CompleteFunc

	screen  Screen
	domain  string
	data    Dataset
	zones   []zone
	tray    []Need
	matches int
	drag    *Drag
	picked  string

	toast        string
	announcement string
	shake        string
	celebration  *cue.Celebration
}

// New returns a game on the intro screen.
func New(opts ...Option) *Game {
	g := &Game{
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		sound:        true,
		screen:       ScreenIntro,
		announcement: "Choose Rice Customers or Fish Customers to start.",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LoadDomain renders a fresh board for domain.
func (g *Game) LoadDomain(_ context.Context, domain string) (View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.load(domain); err != nil {
		return g.view(), err
	}
	return g.view(), nil
}

// Reset reloads the current domain. It does nothing before a domain is chosen.
func (g *Game) Reset(_ context.Context) View {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.domain != "" {
		_ = g.load(g.domain)
	}
	return g.view()
}

// OtherVersion loads the domain that is not currently shown.
func (g *Game) OtherVersion(_ context.Context) View {
	g.mu.Lock()
	defer g.mu.Unlock()

	_ = g.load(Other(g.domain))
	return g.view()
}

// BeginDrag starts dragging needID with pointer at cardRect.
func (g *Game) BeginDrag(_ context.Context, needID string, pointerID int, pointer Point, cardRect Rect) (View, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearTransient()

	if g.screen != ScreenGame || g.drag != nil {
		return g.view(), false
	}
	home := g.trayIndex(needID)
	if home < 0 {
		return g.view(), false
	}
	g.drag = &Drag{
		PointerID: pointerID,
		NeedID:    needID,
		HomeIndex: home,
		Offset:    pointer.Sub(cardRect.Origin()),
		Position:  cardRect.Origin(),
	}
	g.highlight("")
	return g.view(), true
}

// Move follows the pointer and highlights the zone beneath it.
func (g *Game) Move(_ context.Context, pointerID int, pointer Point, geo Geometry) (View, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.drag == nil || g.drag.PointerID != pointerID {
		return g.view(), false
	}
	g.drag.Position = pointer.Sub(g.drag.Offset)
	over, _ := zoneAt(geo, pointer)
	g.highlight(over)
	return g.view(), true
}

// Drop releases the drag at pointer.
func (g *Game) Drop(ctx context.Context, pointerID int, pointer Point, geo Geometry) (View, Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearTransient()

	if g.drag == nil || g.drag.PointerID != pointerID {
		return g.view(), Ignored
	}
	needID := g.drag.NeedID
	g.drag = nil
	g.highlight("")

	over, ok := zoneAt(geo, pointer)
	if !ok {
		g.shake = needID
		return g.view(), Returned
	}
	return g.view(), g.evaluate(ctx, needID, over)
}

// Cancel aborts the drag; the card returns to the tray.
func (g *Game) Cancel(_ context.Context, pointerID int) (View, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearTransient()

	if g.drag == nil || g.drag.PointerID != pointerID {
		return g.view(), false
	}
	g.shake = g.drag.NeedID
	g.drag = nil
	g.highlight("")
	return g.view(), true
}

// Pick selects a card with the keyboard.
func (g *Game) Pick(_ context.Context, needID string) (View, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearTransient()

	if g.screen != ScreenGame || g.trayIndex(needID) < 0 {
		return g.view(), false
	}
	g.picked = needID
	g.toast = ToastSelected
	g.announcement = "Need selected. Choose a customer drop area."
	return g.view(), true
}

// ActivateZone places the picked card on zoneID.
func (g *Game) ActivateZone(ctx context.Context, zoneID string) (View, Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearTransient()

	if g.picked == "" || g.screen != ScreenGame {
		return g.view(), Ignored
	}
	needID := g.picked
	g.picked = ""
	return g.view(), g.evaluate(ctx, needID, zoneID)
}

// SetSound toggles the audible cues.
func (g *Game) SetSound(on bool) View {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sound = on
	return g.view()
}

// View returns the current render model.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view()
}

// Close implements the session teardown hook; a game holds no timers.
func (g *Game) Close() {}

func (g *Game) load(domain string) error {
	data, ok := Datasets[domain]
	if !ok {
		return fmt.Errorf("load %q: %w", domain, ErrUnknownDomain)
	}
	g.domain = domain
	g.data = data
	if g.store != nil {
		hints.Update(g.store, func(r *hints.Record) { r.SetMatch(domain) })
	}

	g.matches = 0
	g.drag = nil
	g.picked = ""
	g.toast = ""
	g.clearTransient()
	g.zones = make([]zone, len(data.Customers))
	for i, c := range data.Customers {
		g.zones[i] = zone{customer: c}
	}
	g.tray = Shuffle(g.rng, data.Needs)
	g.screen = ScreenGame
	g.announcement = fmt.Sprintf("%s loaded. Match %d needs to %d customers.", data.Label, len(data.Needs), len(data.Customers))
	return nil
}

// evaluate applies the acceptance rule for needID dropped on zoneID.
func (g *Game) evaluate(ctx context.Context, needID, zoneID string) Result {
	home := g.trayIndex(needID)
	if home < 0 {
		return Ignored
	}
	need := g.tray[home]
	zi := g.zoneIndex(zoneID)

	correct := zi >= 0 && need.MatchTo == zoneID && g.zones[zi].needID == ""
	if g.onDrop != nil {
		g.onDrop(g.domain, needID, zoneID, correct)
	}
	if !correct {
		g.shake = needID
		g.toast = ToastWrong
		g.announcement = "Not quite. Try again."
		cue.Emit(ctx, g.player, g.sound, cue.ActivityPalette.Tone(cue.Bad))
		return Mismatch
	}

	g.zones[zi].needID = needID
	g.tray = append(g.tray[:home:home], g.tray[home+1:]...)
	g.matches++
	g.toast = ToastCorrect
	g.announcement = "Correct match."
	pop := cue.Pop
	g.celebration = &pop
	cue.Emit(ctx, g.player, g.sound, cue.ActivityPalette.Tone(cue.Good))

	if g.matches >= len(g.zones) {
		g.screen = ScreenDone
		g.toast = ""
		g.announcement = "All matches complete. Great job!"
		if g.onComplete != nil {
			g.onComplete(g.domain)
		}
	}
	return Matched
}

func (g *Game) highlight(zoneID string) {
	for i := range g.zones {
		g.zones[i].over = zoneID != "" && g.zones[i].customer.ID == zoneID && g.zones[i].needID == ""
	}
}

func (g *Game) clearTransient() {
	g.shake = ""
	g.celebration = nil
}

func (g *Game) trayIndex(needID string) int {
	for i, n := range g.tray {
		if n.ID == needID {
			return i
		}
	}
	return -1
}

func (g *Game) zoneIndex(zoneID string) int {
	for i, z := range g.zones {
		if z.customer.ID == zoneID {
			return i
		}
	}
	return -1
}

func (g *Game) view() View {
	v := View{
		Screen:       g.screen,
		Domain:       g.domain,
		Label:        g.data.Label,
		Zones:        make([]ZoneView, len(g.zones)),
		Tray:         append([]Need{}, g.tray...),
		Matches:      g.matches,
		MatchCount:   fmt.Sprintf("%d/%d", g.matches, len(g.data.Needs)),
		Picked:       g.picked,
		Toast:        g.toast,
		Announcement: g.announcement,
		Sound:        g.sound,
	}
	if g.domain == "" {
		v.MatchCount = "0/4"
	}
	for i, z := range g.zones {
		v.Zones[i] = ZoneView{Customer: z.customer, Matched: z.needID != "", NeedID: z.needID, Over: z.over}
	}
	if g.drag != nil {
		d := *g.drag
		v.Drag = &d
	}
	if g.shake != "" {
		v.Shake = g.shake
		v.ShakeMS = cue.ShakeMS
	}
	if g.celebration != nil {
		c := *g.celebration
		v.Celebration = &c
	}
	if g.screen == ScreenDone {
		v.DoneText = fmt.Sprintf("You completed all matches for %s.", g.data.Label)
	}
	return v
}

// Shuffle returns a Fisher–Yates permutation of needs drawn from rng.
func Shuffle(rng *rand.Rand, needs []Need) []Need {
	out := append([]Need(nil), needs...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
