package engine

import "unicode/utf8"

// KeyKind identifies the kind of keystroke.
type KeyKind uint8

const (
	KeyRune KeyKind = iota
	KeyBackspace
	KeyEnter
	KeyTab
)

// Key is a single keystroke event.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Rune returns a printable keystroke.
func Rune(r rune) Key {
	return Key{Kind: KeyRune, Rune: r}
}

var (
	Backspace = Key{Kind: KeyBackspace}
	Enter     = Key{Kind: KeyEnter}
	Tab       = Key{Kind: KeyTab}
)

// normalize maps control runes delivered as printable keys to their dedicated kinds.
func (k Key) normalize() Key {
	if k.Kind != KeyRune {
		return k
	}
	switch k.Rune {
	case '\n', '\r':
		return Enter
	case '\t':
		return Tab
	case '\b', 0x7f:
		return Backspace
	}
	return k
}

// ParseKey converts a DOM-style key name ("a", "Backspace", "Enter", "Tab") to a Key.
func ParseKey(name string) (Key, bool) {
	switch name {
	case "Backspace":
		return Backspace, true
	case "Enter":
		return Enter, true
	case "Tab":
		return Tab, true
	}
	if utf8.RuneCountInString(name) != 1 {
		return Key{}, false
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return Key{}, false
	}
	return Rune(r).normalize(), true
}
