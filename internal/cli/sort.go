package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortDefault    SortOrder = "default"
	SortByDeadline SortOrder = "deadline"
	SortByTitle    SortOrder = "title"
	SortByAmount   SortOrder = "amount"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case "":
		return SortDefault, nil
	case SortDefault, SortByDeadline, SortByTitle, SortByAmount:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (must be 'default', 'deadline', 'title' or 'amount')", s)
	}
}

// sortGrants sorts grants in place. SortDefault keeps the curated order
// (niche, amount known first, title).
func sortGrants(grants []*grant.Grant, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDeadline:
		sort.SliceStable(grants, func(i, j int) bool {
			return compareByDeadline(grants[i], grants[j])
		})
	case SortByTitle:
		sort.SliceStable(grants, func(i, j int) bool {
			return lowerTitle(grants[i]) < lowerTitle(grants[j])
		})
	case SortByAmount:
		sort.SliceStable(grants, func(i, j int) bool {
			ai, iok := grants[i].Amount.Int()
			aj, jok := grants[j].Amount.Int()
			if iok && jok && ai != aj {
				return ai > aj
			}
			if iok != jok {
				return iok
			}
			// Free-form amounts before unknown ones
			if pi, pj := grants[i].HasAmount(), grants[j].HasAmount(); pi != pj {
				return pi
			}
			return lowerTitle(grants[i]) < lowerTitle(grants[j])
		})
	}
}

// compareByDeadline puts dated grants first (soonest first), then rolling
// ones, then grants without a usable deadline
func compareByDeadline(i, j *grant.Grant) bool {
	di := i.DeadlineTime()
	dj := j.DeadlineTime()

	if !di.IsZero() && !dj.IsZero() {
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return lowerTitle(i) < lowerTitle(j)
	}

	// If only one date is valid, put the valid one first
	if !di.IsZero() {
		return true
	}
	if !dj.IsZero() {
		return false
	}

	if i.IsRolling() != j.IsRolling() {
		return i.IsRolling()
	}
	return lowerTitle(i) < lowerTitle(j)
}

func lowerTitle(g *grant.Grant) string {
	return strings.ToLower(g.Title)
}
