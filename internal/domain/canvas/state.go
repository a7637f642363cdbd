package canvas

import "github.com/agrisiti/agrikit/internal/domain/localstore"

// State is the persisted canvas.
type State struct {
	Boxes        map[string]Value `json:"boxes"`
	BusinessName string           `json:"businessName"`
	UserName     string           `json:"userName"`
}

func emptyState() State {
	return State{Boxes: map[string]Value{}}
}

// Filled reports whether box id has a non-empty answer.
func (s State) Filled(id string) bool {
	v, ok := s.Boxes[id]
	return ok && !v.Empty()
}

// CountFilled counts boxes with non-empty answers.
func (s State) CountFilled() int {
	n := 0
	for _, b := range Boxes {
		if s.Filled(b.ID) {
			n++
		}
	}
	return n
}

// FirstEmpty returns the guided index of the first unfilled box, or
// BoxCount when every box is filled.
func (s State) FirstEmpty() int {
	for i, b := range Boxes {
		if !s.Filled(b.ID) {
			return i
		}
	}
	return BoxCount
}

// Ready reports whether the canvas may be downloaded.
func (s State) Ready() bool {
	return s.CountFilled() == BoxCount && s.BusinessName != ""
}

// LoadState reads the saved canvas. Missing or unreadable data yields an
// empty canvas and false. Answers under unknown boxes, or whose shape does
// not match their box kind, are dropped.
func LoadState(st localstore.Storage) (State, bool) {
	var s State
	if !localstore.GetJSON(st, localstore.KeyCanvas, &s) {
		return emptyState(), false
	}
	boxes := make(map[string]Value, len(s.Boxes))
	for id, v := range s.Boxes {
		box, _, ok := Lookup(id)
		if !ok || v.IsList() != (box.Kind == MultiSelect) {
			continue
		}
		boxes[id] = v
	}
	s.Boxes = boxes
	return s, true
}

// SaveState writes the canvas.
func SaveState(st localstore.Storage, s State) {
	localstore.SetJSON(st, localstore.KeyCanvas, s)
}
