package models

// Preference is client-only display metadata for one note. Unset fields are
// omitted from the stored JSON so a partial Set does not clobber the other.
type Preference struct {
	Color    string `json:"color,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// Preferences maps note UUID to its preference.
type Preferences map[string]Preference

// Merge returns p with the non-empty fields of patch laid over it.
func (p Preference) Merge(patch Preference) Preference {
	if patch.Color != "" {
		p.Color = patch.Color
	}
	if patch.Position != nil {
		pos := *patch.Position
		p.Position = &pos
	}
	return p
}

// At is a convenience for building a position-only preference.
func At(position int) Preference {
	return Preference{Position: &position}
}
