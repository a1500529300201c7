package violation

import (
	"fmt"
	"strings"
)

// Code is one canonical violation category. New categories are added as
// constants here and as a rule in the phrase table, never as free text.
type Code string

const (
	NoHelmet     Code = "NoHelmet"
	NoSeatbelt   Code = "NoSeatbelt"
	TripleRiding Code = "TripleRiding"
)

// NoViolationsLabel is shown in place of an empty violation list. It is a
// display string only and has no Code.
const NoViolationsLabel = "No Violations Detected"

var displayNames = map[Code]string{
	NoHelmet:     "No Helmet",
	NoSeatbelt:   "No Seatbelt",
	TripleRiding: "Triple Riding",
}

// Codes returns every known code in canonical evaluation order.
func Codes() []Code {
	return []Code{NoHelmet, NoSeatbelt, TripleRiding}
}

func (c Code) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// DisplayName is the human readable name printed on the challan.
func (c Code) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Code) String() string {
	return string(c)
}

// ParseCode accepts either the canonical key ("NoHelmet") or the display
// name ("No Helmet"), case-insensitively.
func ParseCode(name string) (Code, error) {
	trimmed := strings.TrimSpace(name)
	for _, code := range Codes() {
		if strings.EqualFold(trimmed, string(code)) || strings.EqualFold(trimmed, code.DisplayName()) {
			return code, nil
		}
	}
	if strings.EqualFold(trimmed, NoViolationsLabel) {
		return "", fmt.Errorf("%q is a display label, not a violation code", name)
	}
	return "", fmt.Errorf("unknown violation code %q", name)
}

// Set is the ordered, duplicate-free list of codes found in one image.
type Set []Code

func (s Set) Contains(code Code) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

func (s Set) Empty() bool {
	return len(s) == 0
}

// DisplayNames renders the set for documents and pages. An empty set
// renders as the single NoViolationsLabel entry.
func DisplayNames(s Set) []string {
	if len(s) == 0 {
		return []string{NoViolationsLabel}
	}
	names := make([]string, 0, len(s))
	for _, code := range s {
		names = append(names, code.DisplayName())
	}
	return names
}
