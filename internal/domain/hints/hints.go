// Package hints holds the small, versioned record the activities use to pass
// values to each other: the matching game's chosen domain and the cost
// calculator's mode, total, selection and price. Every field is optional;
// readers fall back to defaults when a value is missing or unreadable.
package hints

import (
	"encoding/json"
	"sort"

	"github.com/agrisiti/agrikit/internal/domain/localstore"
)

// Version is written into every record.
const Version = 1

// Record is the shared cross-activity schema.
type Record struct {
	Version        int      `json:"version"`
	MatchMode      *string  `json:"match_mode,omitempty"`
	CostsMode      *string  `json:"costs_mode,omitempty"`
	CostsTotal     *float64 `json:"costs_total,omitempty"`
	CostsSelected  []int    `json:"costs_selected,omitempty"`
	SellPrice      *float64 `json:"sell_price,omitempty"`
	BreakEvenUnits *int     `json:"break_even_units,omitempty"`
}

// Load reads the record, returning an empty one when absent or corrupt.
func Load(s localstore.Storage) Record {
	var r Record
	if !localstore.GetJSON(s, localstore.KeyHints, &r) {
		return Record{Version: Version}
	}
	return r
}

// Update applies fn to the stored record atomically and writes it back.
func Update(s localstore.Storage, fn func(*Record)) {
	s.UpdateItem(localstore.KeyHints, func(cur string, ok bool) string {
		var r Record
		if ok && cur != "" {
			if err := json.Unmarshal([]byte(cur), &r); err != nil {
				r = Record{}
			}
		}
		fn(&r)
		r.Version = Version
		b, err := json.Marshal(r)
		if err != nil {
			return cur
		}
		return string(b)
	})
}

// Match returns the matching-game domain, or "" when none was chosen.
func (r Record) Match() string { return deref(r.MatchMode) }

// Costs returns the cost calculator's domain, or "".
func (r Record) Costs() string { return deref(r.CostsMode) }

// Total returns the last selected cost total, or 0.
func (r Record) Total() float64 {
	if r.CostsTotal == nil {
		return 0
	}
	return *r.CostsTotal
}

// Price returns the last valid selling price, or 0.
func (r Record) Price() float64 {
	if r.SellPrice == nil {
		return 0
	}
	return *r.SellPrice
}

// SetCosts records the calculator's selection. Indices are stored ascending.
func (r *Record) SetCosts(mode string, total float64, selected []int) {
	idx := append([]int(nil), selected...)
	sort.Ints(idx)
	r.CostsMode = &mode
	r.CostsTotal = &total
	r.CostsSelected = idx
}

// SetBreakEven records a successful break-even computation.
func (r *Record) SetBreakEven(price float64, units int) {
	r.SellPrice = &price
	r.BreakEvenUnits = &units
}

// SetMatch records the matching game's domain.
func (r *Record) SetMatch(mode string) {
	r.MatchMode = &mode
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
