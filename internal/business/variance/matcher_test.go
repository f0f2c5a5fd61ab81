package variance

import "testing"

func TestSubstringMatcher(t *testing.T) {
	unit := &Unit{Brand: "Grey Goose", Product: "Vodka", SKU: "GG-750"}

	tests := []struct {
		name string
		unit *Unit
		line SaleLine
		want bool
	}{
		{"brand in name", unit, SaleLine{Name: "Grey Goose Martini"}, true},
		{"case insensitive", unit, SaleLine{Name: "GREY GOOSE double"}, true},
		{"product only", unit, SaleLine{Name: "House vodka soda"}, true},
		{"unrelated", unit, SaleLine{Name: "Tito's Mule"}, false},
		{"empty name", unit, SaleLine{Name: ""}, false},
		{"nil unit", nil, SaleLine{Name: "Grey Goose"}, false},
		{"empty brand is skipped", &Unit{Product: "Gin"}, SaleLine{Name: "Negroni"}, false},
		{"blank fields never match everything", &Unit{Brand: "  ", Product: ""}, SaleLine{Name: "anything"}, false},
		{"unicode fold", &Unit{Brand: "STRAUSS"}, SaleLine{Name: "Strauß Lager"}, true},
	}

	m := SubstringMatcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.unit, tt.line); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.line.Name, got, tt.want)
			}
		})
	}
}

func TestSKUMatcher(t *testing.T) {
	unit := &Unit{Brand: "Grey Goose", SKU: "GG-750"}
	m := SKUMatcher{}

	if !m.Match(unit, SaleLine{Name: "whatever", SKU: "gg-750"}) {
		t.Error("expected SKU match ignoring case")
	}
	if m.Match(unit, SaleLine{Name: "Grey Goose Martini"}) {
		t.Error("SKU matcher must not fall back to name matching")
	}
	if m.Match(&Unit{}, SaleLine{SKU: ""}) {
		t.Error("empty SKUs must not match")
	}
}

func TestMatcherByName(t *testing.T) {
	if _, ok := MatcherByName("SKU").(SKUMatcher); !ok {
		t.Error("expected SKUMatcher for \"SKU\"")
	}
	for _, name := range []string{"", "substring", "unknown"} {
		if _, ok := MatcherByName(name).(SubstringMatcher); !ok {
			t.Errorf("expected SubstringMatcher for %q", name)
		}
	}
}
