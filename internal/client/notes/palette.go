package notes

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Palette is the set of note colours offered to the user.
var Palette = []string{
	"#FFE4E1",
	"#E1F5FE",
	"#E8F5E8",
	"#FFF3E0",
	"#F3E5F5",
	"#E0F2F1",
	"#FFF8E1",
	"#FCE4EC",
	"#E3F2FD",
	"#F1F8E9",
}

// DefaultColor is given to notes without a stored colour.
var DefaultColor = Palette[0]

var ErrInvalidColor = errors.New("invalid colour")

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ResolveColor accepts a 1-based palette index or a #RRGGBB value and
// returns the colour in upper-case hex.
func ResolveColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(Palette) {
			return "", fmt.Errorf("%w: palette index must be 1..%d", ErrInvalidColor, len(Palette))
		}
		return Palette[n-1], nil
	}
	if !hexColor.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return strings.ToUpper(s), nil
}
