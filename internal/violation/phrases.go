package violation

import "fmt"

// Rule maps trigger phrases to one code. A rule fires when the lower-cased
// text contains at least one trigger and, if Gates is non-empty, at least one
// gate phrase.
type Rule struct {
	Code     Code     `yaml:"code"`
	Gates    []string `yaml:"gates,omitempty"`
	Triggers []string `yaml:"triggers"`
}

// PhraseTable holds at most one rule per code. Rule order does not affect the
// output order, which always follows Codes.
type PhraseTable []Rule

// DefaultPhraseTable returns the built-in rules in Helmet, Seatbelt,
// TripleRiding order.
func DefaultPhraseTable() PhraseTable {
	return PhraseTable{
		{
			Code:  NoHelmet,
			Gates: []string{"helmet"},
			Triggers: []string{
				"no helmet",
				"without helmet",
				"not wearing helmet",
				"helmet violation",
				"not wearing a helmet",
			},
		},
		{
			Code:  NoSeatbelt,
			Gates: []string{"seatbelt", "seat belt"},
			Triggers: []string{
				"no seatbelt",
				"without seatbelt",
				"not wearing seatbelt",
				"seatbelt violation",
			},
		},
		{
			Code: TripleRiding,
			Triggers: []string{
				"triple riding",
				"three people",
				"more than two riders",
			},
		},
	}
}

// Validate rejects unknown codes, rules without triggers and codes that
// appear in more than one rule.
func (t PhraseTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("phrase table is empty")
	}
	seen := make(map[Code]bool, len(t))
	for i, rule := range t {
		if !rule.Code.Valid() {
			return fmt.Errorf("rule %d: unknown violation code %q", i, rule.Code)
		}
		if seen[rule.Code] {
			return fmt.Errorf("rule %d: duplicate rule for %s", i, rule.Code)
		}
		seen[rule.Code] = true
		if len(rule.Triggers) == 0 {
			return fmt.Errorf("rule %d (%s): no trigger phrases", i, rule.Code)
		}
		for _, phrase := range append(append([]string{}, rule.Gates...), rule.Triggers...) {
			if phrase == "" {
				return fmt.Errorf("rule %d (%s): empty phrase", i, rule.Code)
			}
		}
	}
	return nil
}
