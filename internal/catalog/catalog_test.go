package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if !c.Has(Sentinel) {
		t.Fatalf("default catalog missing sentinel %q", Sentinel)
	}
	if !c.Has("groceries") || !c.Has("salary") {
		t.Errorf("default catalog missing expected categories: %v", c.IDs())
	}
}

func TestMatchKeyword(t *testing.T) {
	c := Default()

	tests := []struct {
		description string
		want        string
		wantMatch   bool
	}{
		{"Zomato order 4512", "food", true},
		{"UBER *TRIP HELP.UBER.COM", "transportation", true},
		{"BigBasket weekly", "groceries", true},
		{"NETFLIX.COM subscription", "entertainment", true},
		{"ACME CORP SALARY MAR", "salary", true},
		{"XY78-UNKNOWN-REF", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, ok := c.MatchKeyword(tt.description)
			if ok != tt.wantMatch || got != tt.want {
				t.Errorf("MatchKeyword(%q) = (%q, %v), want (%q, %v)",
					tt.description, got, ok, tt.want, tt.wantMatch)
			}
		})
	}
}

func TestMatchKeywordIsDeterministic(t *testing.T) {
	c := Default()

	first, ok1 := c.MatchKeyword("Zomato order")
	second, ok2 := c.MatchKeyword("Zomato order")
	if first != second || ok1 != ok2 {
		t.Errorf("keyword match not deterministic: %q vs %q", first, second)
	}
}

func TestIDFromName(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		want string
	}{
		{"Groceries", "groceries"},
		{"groceries", "groceries"},
		{"Other Expenses", "other-expense"},
		{"No Such Category", Sentinel},
		{"", Sentinel},
		{"other-expense", "other-expense"}, // already an identifier
	}

	for _, tt := range tests {
		if got := c.IDFromName(tt.name); got != tt.want {
			t.Errorf("IDFromName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseRejectsBrokenCatalogs(t *testing.T) {
	cases := map[string]string{
		"empty":            `categories: []`,
		"missing id":       "categories:\n  - name: Foo\n    type: EXPENSE",
		"duplicate id":     "categories:\n  - id: a\n    name: A\n  - id: a\n    name: B",
		"missing sentinel": "categories:\n  - id: food\n    name: Food",
	}

	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(yml)); err == nil {
				t.Errorf("Parse accepted a broken catalog")
			}
		})
	}
}
