package sitemap

import (
	"strings"
	"time"

	"github.com/starford/menusitemap/internal/models"
)

// HomepagePriority is the priority of the site root entry.
const HomepagePriority = 1.0

// Homepage returns the root entry that heads every sitemap.
func Homepage(baseURL string, now time.Time) models.Entry {
	return models.Entry{
		Loc:        strings.TrimRight(baseURL, "/") + "/",
		LastMod:    now,
		ChangeFreq: models.ChangeDaily,
		Priority:   models.Priority(HomepagePriority),
	}
}

// Assemble concatenates the homepage and the given groups in order and drops
// later entries whose location repeats an earlier one. dropped lists the
// positions of the removed entries in the concatenated input, where the
// homepage is position 0.
func Assemble(home models.Entry, groups ...[]models.Entry) (entries []models.Entry, dropped []int) {
	n := 1
	for _, g := range groups {
		n += len(g)
	}
	all := make([]models.Entry, 0, n)
	all = append(all, home)
	for _, g := range groups {
		all = append(all, g...)
	}
	return Dedupe(all)
}

// Dedupe keeps the first entry for every normalized location, preserving
// order, and reports the positions of the entries it dropped.
func Dedupe(entries []models.Entry) (kept []models.Entry, dropped []int) {
	seen := make(locSet, len(entries))
	kept = make([]models.Entry, 0, len(entries))
	for i, e := range entries {
		if seen.add(e.Loc) {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, i)
		}
	}
	return kept, dropped
}

// NormalizeLoc is the comparison key for duplicate detection: a single
// trailing slash is ignored.
func NormalizeLoc(loc string) string {
	return strings.TrimSuffix(loc, "/")
}

type locSet map[string]struct{}

// add records loc and reports whether it was new.
func (s locSet) add(loc string) bool {
	key := NormalizeLoc(loc)
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}
