package generator

import "github.com/verte-zerg/legipwd/internal/alphabet"

// Rejection names the rule a candidate failed.
type Rejection int

// Rules in evaluation order.
const (
	RejectNone Rejection = iota
	RejectLength
	RejectUnknownSymbol
	RejectRepeated
	RejectPrefixCoverage
	RejectLeadingClass
	rejectionKinds
)

var rejectionNames = [...]string{
	RejectNone:           "ok",
	RejectLength:         "length",
	RejectUnknownSymbol:  "unknown-symbol",
	RejectRepeated:       "repeated",
	RejectPrefixCoverage: "prefix-coverage",
	RejectLeadingClass:   "leading-class",
}

// Rejections returns every failing rule in evaluation order.
func Rejections() []Rejection {
	return []Rejection{RejectLength, RejectUnknownSymbol, RejectRepeated, RejectPrefixCoverage, RejectLeadingClass}
}

// String returns a short rule name.
func (r Rejection) String() string {
	if r < RejectNone || r >= rejectionKinds {
		return "unknown"
	}
	return rejectionNames[r]
}

// ParseRejection maps a rule name back to its Rejection.
func ParseRejection(name string) (Rejection, bool) {
	for r, n := range rejectionNames {
		if n == name {
			return Rejection(r), true
		}
	}
	return RejectNone, false
}

// Describe returns a human readable explanation of the rule.
func (r Rejection) Describe() string {
	switch r {
	case RejectNone:
		return "valid"
	case RejectLength:
		return "must be exactly 13 characters long"
	case RejectUnknownSymbol:
		return "contains a character outside the legible alphabet"
	case RejectRepeated:
		return "repeats a character"
	case RejectPrefixCoverage:
		return "first 6 characters must include lower, upper, digit and special"
	case RejectLeadingClass:
		return "must start with a letter"
	default:
		return "unknown rule"
	}
}

// check evaluates length and membership first, then the policy rules in
// order, stopping at the first failure.
func (s *Sampler) check(candidate []rune) Rejection {
	if len(candidate) != PasswordLength {
		return RejectLength
	}
	var classes [PasswordLength]alphabet.Class
	for i, r := range candidate {
		c, err := s.alpha.ClassOf(r)
		if err != nil {
			return RejectUnknownSymbol
		}
		classes[i] = c
	}
	if !AllUnique(candidate) {
		return RejectRepeated
	}
	if !CoversAllClasses(classes[:PrefixLength]) {
		return RejectPrefixCoverage
	}
	if !StartsWithLetter(classes[:]) {
		return RejectLeadingClass
	}
	return RejectNone
}

// AllUnique reports whether no symbol occurs twice.
func AllUnique(symbols []rune) bool {
	seen := make(map[rune]struct{}, len(symbols))
	for _, r := range symbols {
		if _, ok := seen[r]; ok {
			return false
		}
		seen[r] = struct{}{}
	}
	return true
}

// CoversAllClasses reports whether every character class occurs at least once.
func CoversAllClasses(classes []alphabet.Class) bool {
	for _, want := range alphabet.Classes() {
		found := false
		for _, c := range classes {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// StartsWithLetter reports whether the first class is Lower or Upper.
func StartsWithLetter(classes []alphabet.Class) bool {
	return len(classes) > 0 && classes[0].IsLetter()
}
