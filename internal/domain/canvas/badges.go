package canvas

import (
	"slices"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/localstore"
)

// BadgeAgripreneur is unlocked by completing the canvas.
const BadgeAgripreneur = "im_an_agripreneur"

// Profile is the learner's achievement record.
type Profile struct {
	Badges        []string `json:"badges"`
	LastCompleted string   `json:"lastCompleted,omitempty"`
}

// LoadBadges returns the unlocked badges.
func LoadBadges(st localstore.Storage) []string {
	var badges []string
	if !localstore.GetJSON(st, localstore.KeyBadges, &badges) {
		return nil
	}
	return badges
}

// LoadProfile returns the stored profile, or a zero one.
func LoadProfile(st localstore.Storage) Profile {
	var p Profile
	localstore.GetJSON(st, localstore.KeyProfile, &p)
	return p
}

// UnlockBadge adds badge to the badge list if missing and stamps the profile
// with now. It reports whether the badge was newly added.
func UnlockBadge(st localstore.Storage, badge string, now time.Time) bool {
	badges := LoadBadges(st)
	added := !slices.Contains(badges, badge)
	if added {
		badges = append(badges, badge)
	}
	localstore.SetJSON(st, localstore.KeyBadges, badges)

	p := LoadProfile(st)
	p.Badges = badges
	p.LastCompleted = now.UTC().Format(time.RFC3339Nano)
	localstore.SetJSON(st, localstore.KeyProfile, p)
	return added
}
