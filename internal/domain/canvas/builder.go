// Package canvas implements the guided Business Model Canvas builder: a
// one-box-at-a-time walk over nine fixed boxes with persisted answers, an
// edit mode that lifts the step restriction, a business-name finish step that
// unlocks a badge, and a printable sheet.
package canvas

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/cue"
	"github.com/agrisiti/agrikit/internal/domain/hints"
	"github.com/agrisiti/agrikit/internal/domain/localstore"
)

// DownloadNotice is announced when a download is refused.
const DownloadNotice = "Complete all boxes and add a business name before downloading."

// Phase is the position in the guided walk.
type Phase string

const (
	NotStarted           Phase = "not_started"
	GuidedStep           Phase = "guided_step"
	AwaitingBusinessName Phase = "awaiting_business_name"
	Completed            Phase = "completed"
)

// Screen is the visible page.
type Screen string

const (
	ScreenIntro  Screen = "intro"
	ScreenCanvas Screen = "canvas"
)

// Cursor tracks the guided walk. Index BoxCount means every box was visited.
type Cursor struct {
	Index    int  `json:"index"`
	Active   bool `json:"active"`
	EditMode bool `json:"edit_mode"`
}

// Draft is an unsaved editor answer: Text for free-text boxes, Checked for
// multi-select boxes.
type Draft struct {
	Text    string   `json:"text"`
	Checked []string `json:"checked"`
}

// OptionView is one checkbox in the editor.
type OptionView struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// EditorView is the open box dialog.
type EditorView struct {
	BoxID      string       `json:"box_id"`
	Title      string       `json:"title"`
	Question   string       `json:"question"`
	Kind       Kind         `json:"kind"`
	Suggestion string       `json:"suggestion"`
	Text       string       `json:"text,omitempty"`
	Options    []OptionView `json:"options,omitempty"`
}

// NamePromptView is the finish dialog.
type NamePromptView struct {
	BusinessName string `json:"business_name"`
	UserName     string `json:"user_name"`
}

// BoxView is one canvas cell.
type BoxView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Filled    bool   `json:"filled"`
	Highlight bool   `json:"highlight"`
}

// View is the render model of a builder.
type View struct {
	Screen       Screen           `json:"screen"`
	Phase        Phase            `json:"phase"`
	Cursor       Cursor           `json:"cursor"`
	Boxes        []BoxView        `json:"boxes"`
	Filled       int              `json:"filled"`
	Progress     string           `json:"progress"`
	BusinessName string           `json:"business_name"`
	UserName     string           `json:"user_name"`
	CanDownload  bool             `json:"can_download"`
	Editor       *EditorView      `json:"editor,omitempty"`
	NamePrompt   *NamePromptView  `json:"name_prompt,omitempty"`
	Badges       []string         `json:"badges"`
	Celebration  *cue.Celebration `json:"celebration,omitempty"`
	Announcement string           `json:"announcement,omitempty"`
}

// SaveFunc observes each saved box.
type SaveFunc func(boxID string, filled int)

// CompleteFunc observes a finished canvas; newBadge is false on repeats.
type CompleteFunc func(businessName string, newBadge bool)

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithOnSave registers a save hook. It runs with the builder locked.
func WithOnSave(fn SaveFunc) Option {
	return func(b *Builder) { b.onSave = fn }
}

// WithOnComplete registers a completion hook. It runs with the builder locked.
func WithOnComplete(fn CompleteFunc) Option {
	return func(b *Builder) { b.onComplete = fn }
}

type editor struct {
	box   Box
	draft Draft
}

// Builder is one learner's canvas session over a Storage.
type Builder struct {
	mu sync.Mutex

	store      localstore.Storage
	now        func() time.Time
	onSave     SaveFunc
	onComplete CompleteFunc

	state      State
	cursor     Cursor
	phase      Phase
	screen     Screen
	editor     *editor
	namePrompt bool

	celebration  *cue.Celebration
	announcement string
}

// New returns a builder on the intro screen with any saved canvas loaded.
func New(store localstore.Storage, opts ...Option) *Builder {
	b := &Builder{
		store:  store,
		now:    time.Now,
		phase:  NotStarted,
		screen: ScreenIntro,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.state, _ = LoadState(store)
	return b
}

// StartGuided begins the walk at the first box.
func (b *Builder) StartGuided(_ context.Context) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	b.cursor = Cursor{Index: 0, Active: true}
	b.phase = GuidedStep
	b.screen = ScreenCanvas
	b.namePrompt = false
	b.openEditor(Boxes[0])
	return b.view()
}

// ContinueGuided resumes the walk at the first empty box, or asks for the
// business name when none is empty.
func (b *Builder) ContinueGuided(_ context.Context) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	b.cursor = Cursor{Index: b.state.FirstEmpty(), Active: true}
	b.screen = ScreenCanvas
	b.editor = nil
	b.advanceTo(b.cursor.Index)
	return b.view()
}

// EnableEditMode lets any box be opened and saved without moving the cursor.
func (b *Builder) EnableEditMode(_ context.Context) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	b.cursor.Active = true
	b.cursor.EditMode = true
	b.screen = ScreenCanvas
	b.announcement = "Edit mode enabled. Click any box to edit."
	return b.view()
}

// Open opens the editor for boxID. During a guided walk without edit mode
// only the cursor's box may be opened.
func (b *Builder) Open(_ context.Context, boxID string) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	box, idx, ok := Lookup(boxID)
	if !ok {
		return b.view(), fmt.Errorf("open %q: %w", boxID, ErrUnknownBox)
	}
	if b.cursor.Active && !b.cursor.EditMode && idx != b.cursor.Index {
		return b.view(), fmt.Errorf("open %q: %w", boxID, ErrBoxLocked)
	}
	b.screen = ScreenCanvas
	b.openEditor(box)
	return b.view(), nil
}

// UseSuggestion copies the suggestion into the open editor without saving.
func (b *Builder) UseSuggestion(_ context.Context) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	if b.editor == nil {
		return b.view(), ErrEditorClosed
	}
	suggestion := Suggest(b.editor.box.ID, hints.Load(b.store))
	if b.editor.box.Kind == MultiSelect {
		lower := strings.ToLower(suggestion)
		var checked []string
		for _, opt := range b.editor.box.Options {
			if strings.Contains(lower, strings.ToLower(opt)) {
				checked = append(checked, opt)
			}
		}
		b.editor.draft = Draft{Checked: checked}
	} else {
		b.editor.draft = Draft{Text: suggestion}
	}
	return b.view(), nil
}

// Save stores draft as the open box's answer. During a guided walk without
// edit mode the cursor then moves to the next box, or to the name prompt
// after the last one.
func (b *Builder) Save(_ context.Context, draft Draft) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	if b.editor == nil {
		return b.view(), ErrEditorClosed
	}
	box := b.editor.box
	if box.Kind == MultiSelect {
		var checked []string
		for _, opt := range box.Options {
			if slices.Contains(draft.Checked, opt) {
				checked = append(checked, opt)
			}
		}
		b.state.Boxes[box.ID] = List(checked...)
	} else {
		b.state.Boxes[box.ID] = Text(strings.TrimSpace(draft.Text))
	}
	SaveState(b.store, b.state)
	b.editor = nil
	if b.onSave != nil {
		b.onSave(box.ID, b.state.CountFilled())
	}

	if b.cursor.Active && !b.cursor.EditMode {
		b.cursor.Index = min(b.cursor.Index+1, BoxCount)
		b.advanceTo(b.cursor.Index)
	}
	return b.view(), nil
}

// CloseEditor dismisses the box editor or the name prompt without saving.
func (b *Builder) CloseEditor(_ context.Context) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	b.editor = nil
	b.namePrompt = false
	return b.view()
}

// Finish names the business, unlocks the badge and completes the canvas.
// An empty business name leaves everything unchanged.
func (b *Builder) Finish(_ context.Context, businessName, userName string) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	if !b.namePrompt {
		return b.view(), ErrNotAwaitingName
	}
	biz := strings.TrimSpace(businessName)
	if biz == "" {
		b.announcement = "Please enter a business name."
		return b.view(), ErrBusinessNameRequired
	}

	b.state.BusinessName = biz
	user := strings.TrimSpace(userName)
	if user == "" {
		user = b.state.UserName
	}
	if user == "" {
		user = "—"
	}
	b.state.UserName = user
	SaveState(b.store, b.state)

	b.namePrompt = false
	added := UnlockBadge(b.store, BadgeAgripreneur, b.now())
	confetti := cue.Confetti
	b.celebration = &confetti
	b.phase = Completed
	b.announcement = "Congratulations! Canvas completed and badge unlocked."
	if b.onComplete != nil {
		b.onComplete(biz, added)
	}
	return b.view(), nil
}

// ResetAll forgets the canvas. Badges are kept.
func (b *Builder) ResetAll(_ context.Context) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	b.store.RemoveItem(localstore.KeyCanvas)
	b.state = emptyState()
	b.cursor = Cursor{}
	b.phase = NotStarted
	b.screen = ScreenIntro
	b.editor = nil
	b.namePrompt = false
	b.announcement = "Canvas reset."
	return b.view()
}

// LoadSaved reloads the persisted canvas and reports whether one was found.
func (b *Builder) LoadSaved(_ context.Context) (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTransient()

	state, ok := LoadState(b.store)
	if ok {
		b.state = state
		b.announcement = "Saved canvas loaded."
	} else {
		b.announcement = "No saved canvas found. Start building."
	}
	b.screen = ScreenCanvas
	return b.view(), ok
}

// Download returns the printable sheet, or ErrDownloadNotReady until every
// box is filled and the business is named.
func (b *Builder) Download(_ context.Context) (Sheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Ready() {
		b.announcement = DownloadNotice
		return Sheet{}, ErrDownloadNotReady
	}
	return buildSheet(b.state, b.now()), nil
}

// Progress returns the filled box count and the total.
func (b *Builder) Progress() (filled, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.CountFilled(), BoxCount
}

// View returns the current render model.
func (b *Builder) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view()
}

// Close implements the session teardown hook; a builder holds no timers.
func (b *Builder) Close() {}

// advanceTo opens box i of the walk, or the name prompt past the last box.
func (b *Builder) advanceTo(i int) {
	if i >= BoxCount {
		b.phase = AwaitingBusinessName
		b.namePrompt = true
		b.announcement = "Name your business to finish."
		return
	}
	b.phase = GuidedStep
	b.openEditor(Boxes[i])
}

func (b *Builder) openEditor(box Box) {
	e := &editor{box: box}
	cur := b.state.Boxes[box.ID]
	if box.Kind == MultiSelect {
		if cur.IsList() {
			e.draft.Checked = cur.Items()
		}
	} else if !cur.IsList() {
		e.draft.Text = cur.String()
	}
	b.editor = e
	b.namePrompt = false
	b.announcement = fmt.Sprintf("Editing %s.", box.Title)
}

func (b *Builder) clearTransient() {
	b.celebration = nil
}

func (b *Builder) view() View {
	filled := b.state.CountFilled()
	v := View{
		Screen:       b.screen,
		Phase:        b.phase,
		Cursor:       b.cursor,
		Boxes:        make([]BoxView, len(Boxes)),
		Filled:       filled,
		Progress:     fmt.Sprintf("%d/%d", filled, BoxCount),
		BusinessName: orDash(b.state.BusinessName),
		UserName:     orDash(b.state.UserName),
		CanDownload:  b.state.Ready(),
		Badges:       LoadBadges(b.store),
		Announcement: b.announcement,
	}
	highlight := b.cursor.Active && !b.cursor.EditMode && b.phase == GuidedStep
	for i, box := range Boxes {
		body := strings.TrimSpace(b.state.Boxes[box.ID].String())
		bv := BoxView{ID: box.ID, Title: box.Title, Body: body, Filled: body != ""}
		if body == "" {
			bv.Body = "Click to add…"
		}
		bv.Highlight = highlight && i == b.cursor.Index
		v.Boxes[i] = bv
	}
	if v.Badges == nil {
		v.Badges = []string{}
	}
	if b.editor != nil {
		v.Editor = b.editorView()
	}
	if b.namePrompt {
		v.NamePrompt = &NamePromptView{BusinessName: b.state.BusinessName, UserName: b.state.UserName}
	}
	if b.celebration != nil {
		c := *b.celebration
		v.Celebration = &c
	}
	return v
}

func (b *Builder) editorView() *EditorView {
	box := b.editor.box
	ev := &EditorView{
		BoxID:      box.ID,
		Title:      box.Title,
		Question:   box.Question,
		Kind:       box.Kind,
		Suggestion: orDash(Suggest(box.ID, hints.Load(b.store))),
	}
	if box.Kind == MultiSelect {
		ev.Options = make([]OptionView, len(box.Options))
		for i, opt := range box.Options {
			ev.Options[i] = OptionView{Label: opt, Checked: slices.Contains(b.editor.draft.Checked, opt)}
		}
	} else {
		ev.Text = b.editor.draft.Text
	}
	return ev
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
