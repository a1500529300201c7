package violation

import "strings"

// OutputKind tells which representation a classifier produced.
type OutputKind string

const (
	KindText   OutputKind = "text"
	KindLabels OutputKind = "labels"
)

// ClassifierOutput is what a violation classifier returns for one image:
// free text or detected-object labels, never both.
type ClassifierOutput struct {
	Kind   OutputKind `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Labels []string   `json:"labels,omitempty"`
}

func TextOutput(text string) ClassifierOutput {
	return ClassifierOutput{Kind: KindText, Text: text}
}

func LabelOutput(labels []string) ClassifierOutput {
	return ClassifierOutput{Kind: KindLabels, Labels: labels}
}

// Normalizer turns classifier output into canonical codes. It holds only
// immutable configuration and is safe for concurrent use.
type Normalizer struct {
	phrases PhraseTable
	labels  LabelPolicy
}

func NewNormalizer(phrases PhraseTable, labels LabelPolicy) *Normalizer {
	rules := make(PhraseTable, 0, len(phrases))
	for _, rule := range phrases {
		rules = append(rules, Rule{
			Code:     rule.Code,
			Gates:    lowerAll(rule.Gates),
			Triggers: lowerAll(rule.Triggers),
		})
	}
	return &Normalizer{phrases: rules, labels: labels}
}

func NewDefaultNormalizer() *Normalizer {
	return NewNormalizer(DefaultPhraseTable(), DefaultLabelPolicy())
}

// Normalize dispatches on the output kind.
func (n *Normalizer) Normalize(out ClassifierOutput) Set {
	if out.Kind == KindLabels {
		return n.NormalizeLabels(out.Labels)
	}
	return n.NormalizeText(out.Text)
}

// NormalizeText returns every code whose rule matches the text, in the
// canonical order of Codes regardless of how the table is ordered.
func (n *Normalizer) NormalizeText(text string) Set {
	lower := strings.ToLower(text)
	matched := make(map[Code]bool, len(n.phrases))

	for _, rule := range n.phrases {
		if len(rule.Gates) > 0 && !containsAny(lower, rule.Gates) {
			continue
		}
		if containsAny(lower, rule.Triggers) {
			matched[rule.Code] = true
		}
	}

	set := Set{}
	for _, code := range Codes() {
		if matched[code] {
			set = append(set, code)
		}
	}
	return set
}

// NormalizeLabels applies the person/helmet/seatbelt heuristic to a list of
// detected-object labels (one entry per detected instance).
func (n *Normalizer) NormalizeLabels(labels []string) Set {
	persons, helmets, seatbelts := n.labels.count(labels)
	set := Set{}

	if persons > 0 && helmets == 0 {
		set = append(set, NoHelmet)
	}
	if persons > 0 && seatbelts == 0 {
		set = append(set, NoSeatbelt)
	}
	if persons > n.labels.MaxRiders {
		set = append(set, TripleRiding)
	}

	return set
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func lowerAll(phrases []string) []string {
	out := make([]string, len(phrases))
	for i, phrase := range phrases {
		out[i] = strings.ToLower(phrase)
	}
	return out
}
