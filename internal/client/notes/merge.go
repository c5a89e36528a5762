package notes

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// Merge combines notes, in fetch order, with prefs. A note without a stored
// colour gets DefaultColor; without a stored position it gets its fetch
// index. The result is stably sorted by position, so ties keep fetch order.
func Merge(notes []models.Note, prefs models.Preferences) []models.DisplayNote {
	out := make([]models.DisplayNote, len(notes))
	for i, n := range notes {
		p := prefs[n.UUID]
		dn := models.DisplayNote{Note: n, Color: DefaultColor, Position: i}
		if p.Color != "" {
			dn.Color = p.Color
		}
		if p.Position != nil {
			dn.Position = *p.Position
		}
		out[i] = dn
	}
	sortByPosition(out)
	return out
}

func sortByPosition(list []models.DisplayNote) {
	slices.SortStableFunc(list, func(a, b models.DisplayNote) int {
		return a.Position - b.Position
	})
}

// Filter returns the notes whose title or content contains query, ignoring
// case. An empty query matches everything. list is not modified.
func Filter(list []models.DisplayNote, query string) []models.DisplayNote {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.DisplayNote, 0, len(list))
	for _, n := range list {
		if q == "" ||
			strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}
