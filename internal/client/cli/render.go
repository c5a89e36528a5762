package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/notes"
)

const previewLen = 60

func renderList(w io.Writer, view []models.DisplayNote, query string) {
	if query != "" {
		fmt.Fprintf(w, "Search %q: %d note(s)\n", query, len(view))
	}
	if len(view) == 0 {
		if query == "" {
			fmt.Fprintln(w, "No notes yet. Use 'add' to create one.")
		}
		return
	}
	for i, n := range view {
		fmt.Fprintf(w, "%3d. %s %s\n", i+1, colorLabel(n.Color), displayTitle(n))
		if p := preview(n.Content); p != "" {
			fmt.Fprintf(w, "     %s\n", p)
		}
	}
}

func renderPalette(w io.Writer) {
	for i, c := range notes.Palette {
		fmt.Fprintf(w, "%2d. %s\n", i+1, c)
	}
}

// colorLabel names palette colours by number and shows others as hex.
func colorLabel(c string) string {
	for i, p := range notes.Palette {
		if strings.EqualFold(p, c) {
			return fmt.Sprintf("[%2d]", i+1)
		}
	}
	return "[" + c + "]"
}

func displayTitle(n models.DisplayNote) string {
	if strings.TrimSpace(n.Title) == "" {
		return "(untitled)"
	}
	return n.Title
}

// preview is the first line of content, cut to previewLen runes.
func preview(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	if utf8.RuneCountInString(line) <= previewLen {
		return line
	}
	r := []rune(line)
	return string(r[:previewLen-1]) + "…"
}
