package contracts

import "strings"

// Modifier is a bit set of modifier keys held while a key is pressed.
type Modifier uint8

const (
	// ModShift raises a natural to its sharp.
	ModShift Modifier = 1 << iota
	// ModCtrl lowers a natural to its flat.
	ModCtrl
)

// List returns the modifiers in press order: shift before ctrl.
func (m Modifier) List() []Modifier {
	var out []Modifier
	for _, mod := range []Modifier{ModShift, ModCtrl} {
		if m&mod != 0 {
			out = append(out, mod)
		}
	}
	return out
}

func (m Modifier) String() string {
	names := make([]string, 0, 2)
	if m&ModShift != 0 {
		names = append(names, "shift")
	}
	if m&ModCtrl != 0 {
		names = append(names, "ctrl")
	}
	return strings.Join(names, "+")
}

// KeyCommand is a physical key plus the modifiers to hold. It is a value type
// and never changes once resolved.
type KeyCommand struct {
	Key       rune
	Modifiers Modifier
}

// String renders the command the way it is shown to users, e.g. "shift+q".
func (k KeyCommand) String() string {
	if k.Modifiers == 0 {
		return string(k.Key)
	}
	return k.Modifiers.String() + "+" + string(k.Key)
}
