// Package alphabet defines the legible character classes used for passwords.
package alphabet

import (
	"errors"

	"github.com/samber/oops"
)

// ErrUnknownSymbol is returned when a symbol is looked up that is not part of
// the alphabet.
var ErrUnknownSymbol = errors.New("symbol is not part of the alphabet")

// Class identifies one of the four disjoint character classes.
type Class int

// Character classes in sampling order.
const (
	Lower Class = iota
	Upper
	Digit
	Special
)

// Lookalike glyphs (l, 1, I, O, o, 0, S, 5) are left out on purpose.
var classSymbols = [...]string{
	Lower:   "abcdefghijkmnpqrstuvwxyz",
	Upper:   "ABCDEFGHJKLMNPQRTUVWXYZ",
	Digit:   "2346789",
	Special: "#+.-:_=",
}

var classNames = [...]string{
	Lower:   "lower",
	Upper:   "upper",
	Digit:   "digit",
	Special: "special",
}

// Classes returns all character classes in fixed order.
func Classes() []Class {
	return []Class{Lower, Upper, Digit, Special}
}

// String returns the lowercase class name.
func (c Class) String() string {
	if c < Lower || c > Special {
		return "unknown"
	}
	return classNames[c]
}

// Symbols returns the ordered symbols of the class.
func (c Class) Symbols() []rune {
	if c < Lower || c > Special {
		return nil
	}
	return []rune(classSymbols[c])
}

// IsLetter reports whether the class holds letters.
func (c Class) IsLetter() bool {
	return c == Lower || c == Upper
}

// Alphabet is the ordered union of all character classes.
type Alphabet struct {
	symbols []rune
	classOf map[rune]Class
}

// Default builds the alphabet from the four fixed classes.
func Default() *Alphabet {
	classes := make(map[Class]string, len(classSymbols))
	for _, c := range Classes() {
		classes[c] = classSymbols[c]
	}
	return New(classes)
}

// New builds an alphabet from per-class symbol strings, in class order.
// Classes must be disjoint; a symbol seen twice keeps its first class.
func New(classes map[Class]string) *Alphabet {
	a := &Alphabet{classOf: map[rune]Class{}}
	for _, c := range Classes() {
		for _, r := range classes[c] {
			if _, dup := a.classOf[r]; dup {
				continue
			}
			a.symbols = append(a.symbols, r)
			a.classOf[r] = c
		}
	}
	return a
}

// Symbols returns a copy of all symbols, ordered by class and then by
// position inside the class.
func (a *Alphabet) Symbols() []rune {
	out := make([]rune, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// Len returns the number of symbols.
func (a *Alphabet) Len() int {
	return len(a.symbols)
}

// At returns the symbol at index i of Symbols.
func (a *Alphabet) At(i int) rune {
	return a.symbols[i]
}

// Contains reports whether r is part of the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.classOf[r]
	return ok
}

// ClassOf returns the class owning r.
func (a *Alphabet) ClassOf(r rune) (Class, error) {
	c, ok := a.classOf[r]
	if !ok {
		return 0, oops.
			Code("UNKNOWN_SYMBOL").
			With("symbol", string(r)).
			Wrap(ErrUnknownSymbol)
	}
	return c, nil
}
