// Package costs implements the break-even cost calculator: toggle cost items
// to build a total, enter a selling price, and see how many units must be
// sold to cover the costs.
package costs

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/agrisiti/agrikit/internal/domain/cue"
	"github.com/agrisiti/agrikit/internal/domain/hints"
	"github.com/agrisiti/agrikit/internal/domain/localstore"
	"github.com/agrisiti/agrikit/internal/domain/money"
)

// MarkerPercent is where the break-even marker sits on the bar. The bar is
// schematic; it does not scale with the numbers.
const MarkerPercent = 55.0

// Screen is the visible calculator screen.
type Screen string

const (
	ScreenIntro  Screen = "intro"
	ScreenSelect Screen = "select"
	ScreenCalc   Screen = "calc"
)

// Result is the break-even panel.
type Result struct {
	Title         string  `json:"title"`
	Text          string  `json:"text"`
	Error         bool    `json:"error"`
	Units         int     `json:"units,omitempty"`
	FillPercent   float64 `json:"fill_percent"`
	MarkerPercent float64 `json:"marker_percent"`
	MarkerVisible bool    `json:"marker_visible"`
}

var readyResult = Result{
	Title: "Ready when you are.",
	Text:  "Enter your selling price to see the break-even units.",
}

// CardView is one cost card.
type CardView struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Amount   string  `json:"amount"`
	Selected bool    `json:"selected"`
}

// View is the render model of a calculator.
type View struct {
	Screen       Screen     `json:"screen"`
	Domain       string     `json:"domain,omitempty"`
	Label        string     `json:"label,omitempty"`
	Cards        []CardView `json:"cards"`
	Selected     []int      `json:"selected"`
	Total        float64    `json:"total"`
	TotalText    string     `json:"total_text"`
	PriceInput   string     `json:"price_input"`
	Result       Result     `json:"result"`
	Announcement string     `json:"announcement,omitempty"`
	Sound        bool       `json:"sound"`
}

// SummaryItem is one line of the printable summary.
type SummaryItem struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Amount string  `json:"amount"`
	Line   string  `json:"line"`
}

// Summary is the content of the printable cost sheet.
type Summary struct {
	Label     string        `json:"label"`
	Total     float64       `json:"total"`
	TotalText string        `json:"total_text"`
	Price     float64       `json:"price"`
	PriceText string        `json:"price_text"`
	Units     int           `json:"units"`
	UnitsText string        `json:"units_text"`
	Items     []SummaryItem `json:"items"`
}

// BreakEvenFunc observes each break-even attempt; units is 0 on validation failure.
type BreakEvenFunc func(domain string, total, price float64, units int)

// Option configures a Calculator.
type Option func(*Calculator)

// WithStorage sets where the selection and price are recorded for the canvas.
func WithStorage(s localstore.Storage) Option {
	return func(c *Calculator) { c.store = s }
}

// WithPlayer sets the tone sink.
func WithPlayer(p cue.Player) Option {
	return func(c *Calculator) { c.player = p }
}

// WithSound sets the initial sound toggle.
func WithSound(on bool) Option {
	return func(c *Calculator) { c.sound = on }
}

// WithOnBreakEven registers a hook run with the calculator locked.
func WithOnBreakEven(fn BreakEvenFunc) Option {
	return func(c *Calculator) { c.onBreakEven = fn }
}

// Calculator is one learner's cost sheet.
type Calculator struct {
	mu sync.Mutex

	store       localstore.Storage
	player      cue.Player
	sound       bool
	onBreakEven BreakEvenFunc

	screen    Screen
	domain    string
	data      Dataset
	selected  map[int]struct{}
	total     float64
	priceText string
	lastPrice float64
	lastUnits int
	result    Result

	announcement string
}

// New returns a calculator on the intro screen.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		sound:    true,
		screen:   ScreenIntro,
		selected: map[int]struct{}{},
		result:   readyResult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadDomain shows the cost cards for domain with nothing selected.
func (c *Calculator) LoadDomain(_ context.Context, domain string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(domain); err != nil {
		return c.view(), err
	}
	return c.view(), nil
}

// Reset reloads the current domain. It does nothing before a domain is chosen.
func (c *Calculator) Reset(_ context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.domain != "" {
		_ = c.load(c.domain)
	}
	return c.view()
}

// Toggle flips item index in or out of the selection. Out-of-range indices
// are ignored.
func (c *Calculator) Toggle(ctx context.Context, index int) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.domain == "" || index < 0 || index >= len(c.data.Items) {
		return c.view(), false
	}
	if _, ok := c.selected[index]; ok {
		delete(c.selected, index)
		cue.Emit(ctx, c.player, c.sound, cue.ActivityPalette.Tone(cue.Bad))
	} else {
		c.selected[index] = struct{}{}
		cue.Emit(ctx, c.player, c.sound, cue.ActivityPalette.Tone(cue.Good))
	}
	c.recalcTotal()
	return c.view(), true
}

// GoToCalc moves to the price entry screen.
func (c *Calculator) GoToCalc(_ context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.domain != "" {
		c.screen = ScreenCalc
		c.announcement = "Break-even calculator screen. Enter selling price per unit."
	}
	return c.view()
}

// ComputeBreakEven parses priceText and computes the units needed to cover
// the selected total. Validation failures are reported in the result panel.
func (c *Calculator) ComputeBreakEven(ctx context.Context, priceText string) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.computeBreakEven(ctx, priceText)
	return c.view()
}

// TryDifferentNumbers clears the price and the result panel.
func (c *Calculator) TryDifferentNumbers(_ context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetCalc()
	c.announcement = "You can try a new selling price."
	return c.view()
}

// DownloadSummary composes the printable summary. If no break-even has been
// computed yet it computes one from priceText first, or from the last
// entered price when priceText is empty.
func (c *Calculator) DownloadSummary(ctx context.Context, priceText string) (Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.domain == "" {
		return Summary{}, ErrNoDomain
	}
	if c.lastUnits == 0 {
		if priceText == "" {
			priceText = c.priceText
		}
		c.computeBreakEven(ctx, priceText)
	}

	price := c.lastPrice
	if price == 0 {
		price = money.Parse(c.priceText)
	}
	s := Summary{
		Label:     c.data.Label,
		Total:     c.total,
		TotalText: money.Naira(c.total),
		Price:     price,
		PriceText: money.Naira(price),
		Units:     c.lastUnits,
		UnitsText: "—",
	}
	if c.lastUnits > 0 {
		s.UnitsText = money.Group(float64(c.lastUnits))
	}
	for _, i := range c.selectedIndices() {
		it := c.data.Items[i]
		amount := money.Naira(it.Value)
		s.Items = append(s.Items, SummaryItem{
			Name:   it.Name,
			Value:  it.Value,
			Amount: amount,
			Line:   fmt.Sprintf("%s — %s", it.Name, amount),
		})
	}
	return s, nil
}

// SetSound toggles the audible cues.
func (c *Calculator) SetSound(on bool) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sound = on
	return c.view()
}

// View returns the current render model.
func (c *Calculator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// Close implements the session teardown hook; a calculator holds no timers.
func (c *Calculator) Close() {}

// FormatPriceInput is the blur formatting of the price field: a positive
// price is shown with thousands separators, anything else is left alone.
func FormatPriceInput(text string) string {
	if p := money.Parse(text); p > 0 {
		return money.Group(p)
	}
	return text
}

// UnformatPriceInput is the focus counterpart of FormatPriceInput.
func UnformatPriceInput(text string) string {
	p := money.Parse(text)
	if p == 0 {
		return ""
	}
	return money.Plain(p)
}

// BreakEvenUnits is ceil(total/price). Both must be positive. A quotient
// that does not fit in an int yields 0.
func BreakEvenUnits(total, price float64) int {
	if total <= 0 || price <= 0 {
		return 0
	}
	q := math.Ceil(total / price)
	if math.IsNaN(q) || math.IsInf(q, 0) || q >= math.MaxInt64 {
		return 0
	}
	return int(q)
}

func (c *Calculator) load(domain string) error {
	data, ok := Datasets[domain]
	if !ok {
		return fmt.Errorf("load %q: %w", domain, ErrUnknownDomain)
	}
	c.domain = domain
	c.data = data
	c.selected = map[int]struct{}{}
	c.total = 0
	c.lastPrice = 0
	c.lastUnits = 0
	c.resetCalc()
	c.screen = ScreenSelect
	c.announcement = fmt.Sprintf("%s loaded. Select costs to build your total.", data.Label)
	return nil
}

func (c *Calculator) resetCalc() {
	c.priceText = ""
	c.result = readyResult
}

func (c *Calculator) recalcTotal() {
	idx := c.selectedIndices()
	total := 0.0
	for _, i := range idx {
		total += c.data.Items[i].Value
	}
	c.total = total
	if c.store != nil {
		mode := c.domain
		hints.Update(c.store, func(r *hints.Record) { r.SetCosts(mode, total, idx) })
	}
}

func (c *Calculator) computeBreakEven(ctx context.Context, priceText string) {
	c.priceText = priceText
	price := money.Parse(priceText)
	units := BreakEvenUnits(c.total, price)

	var failed *Result
	switch {
	case c.total <= 0:
		failed = &Result{
			Title: "Select some costs first.",
			Text:  fmt.Sprintf("Your total costs are %s. Go back and select at least one cost item.", money.Naira(0)),
			Error: true,
		}
	case price <= 0:
		failed = &Result{
			Title: "Enter a selling price.",
			Text:  fmt.Sprintf("Selling price must be greater than %s.", money.Naira(0)),
			Error: true,
		}
	case units == 0:
		failed = &Result{
			Title: "Selling price is too small.",
			Text:  fmt.Sprintf("No number of sales at that price covers %s. Enter a higher selling price.", money.Naira(c.total)),
			Error: true,
		}
	}
	if failed != nil {
		c.result = *failed
		cue.Emit(ctx, c.player, c.sound, cue.ActivityPalette.Tone(cue.Bad))
		if c.onBreakEven != nil {
			c.onBreakEven(c.domain, c.total, price, 0)
		}
		return
	}

	c.lastPrice = price
	c.lastUnits = units
	if c.store != nil {
		hints.Update(c.store, func(r *hints.Record) { r.SetBreakEven(price, units) })
	}

	grouped := money.Group(float64(units))
	c.result = Result{
		Title:         fmt.Sprintf("Break-even: %s units", grouped),
		Text:          fmt.Sprintf("You must sell at least %s units to break even. After that, it's PROFIT!", grouped),
		Units:         units,
		FillPercent:   MarkerPercent,
		MarkerPercent: MarkerPercent,
		MarkerVisible: true,
	}
	c.announcement = fmt.Sprintf("You must sell at least %d units to break even.", units)
	cue.Emit(ctx, c.player, c.sound, cue.ActivityPalette.Tone(cue.Good))
	if c.onBreakEven != nil {
		c.onBreakEven(c.domain, c.total, price, units)
	}
}

func (c *Calculator) selectedIndices() []int {
	idx := make([]int, 0, len(c.selected))
	for i := range c.selected {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func (c *Calculator) view() View {
	v := View{
		Screen:       c.screen,
		Domain:       c.domain,
		Label:        c.data.Label,
		Cards:        make([]CardView, len(c.data.Items)),
		Selected:     c.selectedIndices(),
		Total:        c.total,
		TotalText:    money.Naira(c.total),
		PriceInput:   c.priceText,
		Result:       c.result,
		Announcement: c.announcement,
		Sound:        c.sound,
	}
	for i, it := range c.data.Items {
		_, sel := c.selected[i]
		v.Cards[i] = CardView{Index: i, Name: it.Name, Value: it.Value, Amount: money.Naira(it.Value), Selected: sel}
	}
	return v
}
