package violation

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	normalizer := NewDefaultNormalizer()

	tests := []struct {
		name string
		text string
		want Set
	}{
		{
			name: "helmet and triple riding",
			text: "The rider is not wearing a helmet and there are three people on the bike.",
			want: Set{NoHelmet, TripleRiding},
		},
		{
			name: "seatbelt only",
			text: "Vehicle without seatbelt detected.",
			want: Set{NoSeatbelt},
		},
		{
			name: "compliant",
			text: "All riders are compliant.",
			want: Set{},
		},
		{
			name: "helmet and seatbelt",
			text: "No helmet violation but seatbelt violation observed.",
			want: Set{NoHelmet, NoSeatbelt},
		},
		{
			name: "empty text",
			text: "",
			want: Set{},
		},
		{
			name: "case insensitive",
			text: "DRIVER WITHOUT SEATBELT, PASSENGER WITH NO HELMET",
			want: Set{NoHelmet, NoSeatbelt},
		},
		{
			name: "spaced seat belt gate",
			text: "seat belt missing, seatbelt violation",
			want: Set{NoSeatbelt},
		},
		{
			name: "gate phrase alone",
			text: "seat belt is not fastened",
			want: Set{},
		},
		{
			name: "helmet mentioned without trigger",
			text: "Both riders wear a helmet.",
			want: Set{},
		},
		{
			name: "all categories",
			text: "Triple riding, no helmet and no seatbelt",
			want: Set{NoHelmet, NoSeatbelt, TripleRiding},
		},
		{
			name: "seatbelt article variant is not a trigger",
			text: "The driver is not wearing a seatbelt.",
			want: Set{},
		},
		{
			name: "more than two riders",
			text: "There are more than two riders on the scooter.",
			want: Set{TripleRiding},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizer.NormalizeText(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeText_NoTriggerPhrases(t *testing.T) {
	normalizer := NewDefaultNormalizer()

	texts := []string{
		"The car is parked legally.",
		"helmet",
		"seatbelt",
		"Two people on a motorcycle, both with helmets.",
		"   ",
	}

	for _, text := range texts {
		if got := normalizer.NormalizeText(text); !got.Empty() {
			t.Errorf("NormalizeText(%q) = %v, want empty set", text, got)
		}
	}
}

func TestNormalizeText_Deterministic(t *testing.T) {
	normalizer := NewDefaultNormalizer()
	text := "Three people, no helmet, without seatbelt."

	first := normalizer.NormalizeText(text)
	second := normalizer.NormalizeText(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical output, got %v and %v", first, second)
	}
}

func TestNormalizeText_CanonicalOrder(t *testing.T) {
	normalizer := NewDefaultNormalizer()

	// Phrases appear in reverse category order in the text.
	got := normalizer.NormalizeText("triple riding observed; seatbelt violation; helmet violation")
	want := Set{NoHelmet, NoSeatbelt, TripleRiding}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeText_CustomTable(t *testing.T) {
	table := PhraseTable{
		{Code: TripleRiding, Triggers: []string{"Four Riders"}},
		{Code: NoHelmet, Gates: []string{"HEAD"}, Triggers: []string{"bare head"}},
	}
	normalizer := NewNormalizer(table, DefaultLabelPolicy())

	got := normalizer.NormalizeText("Bare head rider, four riders total")
	want := Set{NoHelmet, TripleRiding}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeText_ReorderedTableKeepsCanonicalOrder(t *testing.T) {
	table := PhraseTable{
		{Code: TripleRiding, Triggers: []string{"triple riding"}},
		{Code: NoSeatbelt, Gates: []string{"seatbelt"}, Triggers: []string{"no seatbelt"}},
		{Code: NoHelmet, Gates: []string{"helmet"}, Triggers: []string{"no helmet"}},
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	normalizer := NewNormalizer(table, DefaultLabelPolicy())

	tests := []struct {
		text string
		want Set
	}{
		{text: "no helmet, triple riding", want: Set{NoHelmet, TripleRiding}},
		{text: "triple riding, no seatbelt, no helmet", want: Set{NoHelmet, NoSeatbelt, TripleRiding}},
		{text: "no seatbelt", want: Set{NoSeatbelt}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := normalizer.NormalizeText(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeLabels(t *testing.T) {
	normalizer := NewDefaultNormalizer()

	tests := []struct {
		name   string
		labels []string
		want   Set
	}{
		{
			name:   "three people no gear",
			labels: []string{"person", "person", "person"},
			want:   Set{NoHelmet, NoSeatbelt, TripleRiding},
		},
		{
			name:   "fully equipped",
			labels: []string{"person", "helmet", "seatbelt"},
			want:   Set{},
		},
		{
			name:   "no people",
			labels: []string{"car", "motorcycle"},
			want:   Set{},
		},
		{
			name:   "empty",
			labels: nil,
			want:   Set{},
		},
		{
			name:   "two riders one helmet",
			labels: []string{"person", "motorcycle", "person", "helmet"},
			want:   Set{NoSeatbelt},
		},
		{
			name:   "labels are case sensitive",
			labels: []string{"Person", "Person", "Person"},
			want:   Set{},
		},
		{
			name:   "unknown labels ignored",
			labels: []string{"person", "helmet", "seatbelt", "traffic light", "dog"},
			want:   Set{},
		},
		{
			name:   "four riders with helmets",
			labels: []string{"person", "person", "person", "person", "helmet", "seatbelt"},
			want:   Set{TripleRiding},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizer.NormalizeLabels(tt.labels)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeLabels(%v) = %v, want %v", tt.labels, got, tt.want)
			}
		})
	}
}

func TestNormalizeLabels_CustomPolicy(t *testing.T) {
	policy := LabelPolicy{PersonLabel: "rider", HelmetLabel: "hardhat", SeatbeltLabel: "belt", MaxRiders: 1}
	normalizer := NewNormalizer(DefaultPhraseTable(), policy)

	got := normalizer.NormalizeLabels([]string{"rider", "rider", "hardhat", "belt"})
	want := Set{TripleRiding}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalize_Dispatch(t *testing.T) {
	normalizer := NewDefaultNormalizer()

	if got := normalizer.Normalize(TextOutput("no helmet")); !reflect.DeepEqual(got, Set{NoHelmet}) {
		t.Errorf("text dispatch: got %v", got)
	}
	if got := normalizer.Normalize(LabelOutput([]string{"person", "helmet"})); !reflect.DeepEqual(got, Set{NoSeatbelt}) {
		t.Errorf("label dispatch: got %v", got)
	}
}
