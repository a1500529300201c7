package violation

// LabelPolicy holds the tunable label names and rider limit used when the
// classifier reports detected objects instead of text.
type LabelPolicy struct {
	PersonLabel   string `yaml:"person"`
	HelmetLabel   string `yaml:"helmet"`
	SeatbeltLabel string `yaml:"seatbelt"`
	// MaxRiders is the largest person count that is not triple riding.
	MaxRiders int `yaml:"max_riders"`
}

func DefaultLabelPolicy() LabelPolicy {
	return LabelPolicy{
		PersonLabel:   "person",
		HelmetLabel:   "helmet",
		SeatbeltLabel: "seatbelt",
		MaxRiders:     2,
	}
}

func (p LabelPolicy) count(labels []string) (persons, helmets, seatbelts int) {
	for _, label := range labels {
		switch label {
		case p.PersonLabel:
			persons++
		case p.HelmetLabel:
			helmets++
		case p.SeatbeltLabel:
			seatbelts++
		}
	}
	return persons, helmets, seatbelts
}
