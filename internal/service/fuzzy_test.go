package service

import "testing"

func TestRelevanceExactMatch(t *testing.T) {
	tests := []struct {
		query     string
		candidate string
	}{
		{"domates", "domates"},
		{"Domates", "domates"},
		{"SÜT", "süt"},
		{"chicken pasta", "Chicken Pasta"},
	}
	for _, tt := range tests {
		if got := Relevance(tt.query, tt.candidate); got != 100 {
			t.Errorf("Relevance(%q, %q) = %v, want 100", tt.query, tt.candidate, got)
		}
	}
}

func TestRelevancePrefixMatch(t *testing.T) {
	if got := Relevance("dom", "domates"); got != 95 {
		t.Errorf("Relevance(dom, domates) = %v, want 95", got)
	}
}

func TestRelevanceSubstringPosition(t *testing.T) {
	// Earlier match positions must score higher.
	early := Relevance("sosu", "soya sosu tavuk")
	late := Relevance("sosu", "tavuklu noodle soya sosu")
	if early <= late {
		t.Errorf("expected earlier substring match to score higher: early=%v late=%v", early, late)
	}
	if early < 70 || early > 85 {
		t.Errorf("substring score %v outside tier range [70,85]", early)
	}
}

func TestRelevanceTypoTolerance(t *testing.T) {
	// "domtes" is a one-edit typo of "domates" and must land in the
	// edit-distance tier, not fall through to zero.
	got := Relevance("domtes", "domates")
	if got < 50 || got > 70 {
		t.Errorf("Relevance(domtes, domates) = %v, want within [50,70]", got)
	}
}

func TestRelevanceTokenOverlap(t *testing.T) {
	got := Relevance("tavuklu kolay makarna", "Kolay Pilav")
	// One of three query tokens overlaps: 40 + (1/3)*30 = 50.
	if got < 49.9 || got > 50.1 {
		t.Errorf("Relevance token overlap = %v, want 50", got)
	}
}

func TestRelevanceNoMatch(t *testing.T) {
	if got := Relevance("domates", "biber"); got != 0 {
		t.Errorf("Relevance(domates, biber) = %v, want 0", got)
	}
}

func TestRelevanceBounds(t *testing.T) {
	queries := []string{"a", "domates", "çok uzun bir sorgu metni", "xyz", ""}
	candidates := []string{"", "domates", "Domates Çorbası", "chicken", "b"}
	for _, q := range queries {
		for _, c := range candidates {
			got := Relevance(q, c)
			if got < 0 || got > 100 {
				t.Errorf("Relevance(%q, %q) = %v, out of [0,100]", q, c, got)
			}
		}
	}
}

func TestFuzzySearchOrdering(t *testing.T) {
	candidates := []string{"domates", "biber", "domuz"}
	results := FuzzySearch("dom", candidates, 30, 5)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if r.Name == "biber" {
			t.Errorf("biber should be excluded, got %+v", results)
		}
		if r.Score < 30 {
			t.Errorf("result %q below threshold: %v", r.Name, r.Score)
		}
	}
	// Equal prefix scores keep original candidate order.
	if results[0].Name != "domates" || results[1].Name != "domuz" {
		t.Errorf("unexpected order: %+v", results)
	}
}

func TestFuzzySearchEmptyQuery(t *testing.T) {
	results := FuzzySearch("", []string{"domates", "biber"}, 30, 5)
	if len(results) != 0 {
		t.Errorf("empty query must return empty result, got %+v", results)
	}
	results = FuzzySearch("   ", []string{"domates"}, 30, 5)
	if len(results) != 0 {
		t.Errorf("blank query must return empty result, got %+v", results)
	}
}

func TestFuzzySearchLimit(t *testing.T) {
	candidates := []string{"su", "suluk", "su böreği", "sulu köfte", "susam"}
	results := FuzzySearch("su", candidates, 30, 3)
	if len(results) > 3 {
		t.Errorf("limit not honored: got %d results", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted descending: %+v", results)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"domtes", "domates", 1},
		{"kitten", "sitting", 3},
		{"aynı", "aynı", 0},
	}
	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSequenceRatio(t *testing.T) {
	if got := sequenceRatio([]rune("abc"), []rune("abc")); got != 1 {
		t.Errorf("identical strings ratio = %v, want 1", got)
	}
	if got := sequenceRatio([]rune("abc"), []rune("xyz")); got != 0 {
		t.Errorf("disjoint strings ratio = %v, want 0", got)
	}
	got := sequenceRatio([]rune("domtes"), []rune("domates"))
	if got <= 0.5 || got >= 1 {
		t.Errorf("typo ratio = %v, want in (0.5,1)", got)
	}
}
