// Package slug derives URL path segments for grant detail pages.
package slug

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

const (
	// MaxLength bounds the slug derived from a title
	MaxLength = 80

	// Fallback is used for titles with no usable characters
	Fallback = "grant"

	stableSuffixLen = 6
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, replaces each run of characters outside a-z and
// 0-9 with a hyphen, trims hyphens and truncates to MaxLength
func Slugify(title string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = s[:MaxLength]
	}
	if s == "" {
		return Fallback
	}
	return s
}

// Options controls collision handling
type Options struct {
	// Stable suffixes collisions with a hash of the grant's identity instead
	// of a counter, so a slug does not shift when earlier grants change.
	Stable bool
}

// Assign returns one unique slug per grant, in the same order. The first
// grant with a given base slug keeps it; later ones get base-1, base-2, ...
// (or a hash suffix with Options.Stable).
func Assign(grants []*grant.Grant, opts Options) []string {
	counters := make(map[string]int, len(grants))
	used := make(map[string]bool, len(grants))
	slugs := make([]string, len(grants))

	for i, g := range grants {
		base := Slugify(g.Title)

		candidate := base
		if _, seen := counters[base]; !seen && !used[base] {
			counters[base] = 0
		} else if opts.Stable {
			candidate = base + "-" + identityHash(g)
			for n := 2; used[candidate]; n++ {
				candidate = base + "-" + identityHash(g) + "-" + strconv.Itoa(n)
			}
		} else {
			for {
				counters[base]++
				candidate = base + "-" + strconv.Itoa(counters[base])
				if !used[candidate] {
					break
				}
			}
		}

		used[candidate] = true
		slugs[i] = candidate
	}

	return slugs
}

func identityHash(g *grant.Grant) string {
	sum := sha1.Sum([]byte(g.Key()))
	return hex.EncodeToString(sum[:])[:stableSuffixLen]
}
