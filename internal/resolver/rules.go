package resolver

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
)

// DefaultExcludedAliases are aliases of system menu nodes that never belong in a sitemap.
var DefaultExcludedAliases = []string{"root", "all-languages", "all-language"}

// DefaultReservedComponents are system areas (login, registration, profile)
// whose menu entries are skipped.
var DefaultReservedComponents = []string{"com_users"}

// Rules configures navigation exclusion.
type Rules struct {
	ExcludedAliases    []string
	ReservedComponents []string
}

// DefaultRules returns the stock exclusion rules.
func DefaultRules() Rules {
	return Rules{
		ExcludedAliases:    append([]string(nil), DefaultExcludedAliases...),
		ReservedComponents: append([]string(nil), DefaultReservedComponents...),
	}
}

// substringSet matches any of a fixed set of needles inside a haystack in a
// single pass. A matcher is not safe for concurrent use; one is built per
// generation pass.
type substringSet struct {
	matcher *ahocorasick.Matcher
}

func newSubstringSet(needles []string) substringSet {
	words := make([]string, 0, len(needles))
	for _, n := range needles {
		if n != "" {
			words = append(words, n)
		}
	}
	if len(words) == 0 {
		return substringSet{}
	}
	return substringSet{matcher: ahocorasick.NewStringMatcher(words)}
}

func (s substringSet) containsAny(haystack string) bool {
	if s.matcher == nil || haystack == "" {
		return false
	}
	return len(s.matcher.Match([]byte(haystack))) > 0
}
