package reconcile

import (
	"reflect"
	"testing"
)

func TestNewPlanMergesShortForms(t *testing.T) {
	tests := []struct {
		name          string
		known         []string
		expectedFinal []string
		expectedMerge map[string]string
	}{
		{
			name:          "surname merges into full name",
			known:         []string{"Berkel", "Christian Berkel"},
			expectedFinal: []string{"Christian Berkel"},
			expectedMerge: map[string]string{"berkel": "Christian Berkel"},
		},
		{
			name:          "multi-level containment resolves to the longest",
			known:         []string{"Boyle", "Coraghessan Boyle", "Tom Coraghessan Boyle"},
			expectedFinal: []string{"Tom Coraghessan Boyle"},
			expectedMerge: map[string]string{"boyle": "Tom Coraghessan Boyle", "coraghessan boyle": "Tom Coraghessan Boyle"},
		},
		{
			name:          "case duplicates prefer uppercase display",
			known:         []string{"juli zeh", "Juli Zeh"},
			expectedFinal: []string{"Juli Zeh"},
			expectedMerge: map[string]string{},
		},
		{
			name:          "invisible whitespace collapses",
			known:         []string{"Juli\u00a0Zeh", "Daniel  Kehlmann "},
			expectedFinal: []string{"Daniel Kehlmann", "Juli Zeh"},
			expectedMerge: map[string]string{},
		},
		{
			name:          "blank names ignored",
			known:         []string{"", "  ", "Juli Zeh"},
			expectedFinal: []string{"Juli Zeh"},
			expectedMerge: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlan(tt.known)
			if !reflect.DeepEqual(p.Final, tt.expectedFinal) {
				t.Errorf("Expected final %v, got %v", tt.expectedFinal, p.Final)
			}
			if !reflect.DeepEqual(p.Replace, tt.expectedMerge) {
				t.Errorf("Expected replacements %v, got %v", tt.expectedMerge, p.Replace)
			}
		})
	}
}

func TestNewPlanAmbiguousContainment(t *testing.T) {
	p := NewPlan([]string{"Mann", "Thomas Mann", "Heinrich Mann"})

	if got := p.Replace["mann"]; got != "Heinrich Mann" {
		t.Errorf("Expected tie broken towards Heinrich Mann, got %q", got)
	}
	if !reflect.DeepEqual(p.Ambiguous, []string{"mann"}) {
		t.Errorf("Expected mann flagged ambiguous, got %v", p.Ambiguous)
	}
	expected := []string{"Heinrich Mann", "Thomas Mann"}
	if !reflect.DeepEqual(p.Final, expected) {
		t.Errorf("Expected final %v, got %v", expected, p.Final)
	}
}

func TestNewPlanIsStableOnOwnOutput(t *testing.T) {
	first := NewPlan([]string{"Berkel", "christian berkel", "Christian Berkel", "Boyle", "Tom Coraghessan Boyle", "T.C. Boyle"})
	second := NewPlan(first.Final)

	if len(second.Replace) != 0 {
		t.Errorf("Expected no merges on second pass, got %v", second.Replace)
	}
	if !reflect.DeepEqual(first.Final, second.Final) {
		t.Errorf("Expected same final set, got %v then %v", first.Final, second.Final)
	}
}

func TestPlanRewrite(t *testing.T) {
	p := NewPlan([]string{"Berkel", "Christian Berkel", "Juli Zeh"})

	tests := []struct {
		in      string
		out     string
		changed bool
	}{
		{"Berkel", "Christian Berkel", true},
		{"berkel ", "Christian Berkel", true},
		{"Christian Berkel", "Christian Berkel", false},
		{"Juli\u00a0Zeh", "Juli Zeh", true},
		{"Juli Zeh", "Juli Zeh", false},
		{"Unbekannt", "Unbekannt", false},
		{"", "", false},
	}
	for _, tt := range tests {
		out, changed := p.Rewrite(tt.in)
		if out != tt.out || changed != tt.changed {
			t.Errorf("Rewrite(%q): expected (%q, %v), got (%q, %v)", tt.in, tt.out, tt.changed, out, changed)
		}
	}
}
