package shelf

import (
	"cmp"
	"slices"

	"github.com/desertthunder/shelf/internal/models"
)

// Order returns a new slice holding items in display order.
//
// Unlistened items come before listened ones. Inside each group two items that both carry a manual order compare
// by that order; any other pair compares by AddedAt, newest first. Ties keep their input order.
func Order(items []models.Item) []models.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, compareItems)
	return out
}

func compareItems(a, b models.Item) int {
	if a.Listened != b.Listened {
		if a.Listened {
			return 1
		}
		return -1
	}
	if a.Order != nil && b.Order != nil {
		return cmp.Compare(*a.Order, *b.Order)
	}
	return b.AddedAt.Compare(a.AddedAt)
}
