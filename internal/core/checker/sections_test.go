package checker

import "testing"

func TestSectionMatcherKinds(t *testing.T) {
	m := NewSectionMatcher()
	cases := []struct {
		line string
		kind SectionKind
	}{
		{line: "5. Limitations", kind: SectionLimitations},
		{line: "Limitations", kind: SectionLimitations},
		{line: "A) Limitations", kind: SectionLimitations},
		{line: "IV. Limitation", kind: SectionLimitations},
		{line: "7 Limitations", kind: SectionLimitations},
		{line: "Limitations and future work", kind: SectionLimitations},
		{line: "Ethical Considerations", kind: SectionEthics},
		{line: "8. Ethics", kind: SectionEthics},
		{line: "588 EthicalConsiderations This work", kind: SectionEthics},
		{line: "References", kind: SectionReferences},
		{line: "6 References", kind: SectionReferences},
		{line: "Bibliography", kind: SectionReferences},
		{line: "[1] A. Smith. A paper. 2020.", kind: SectionReferences},
		{line: "Appendix A", kind: SectionAppendix},
		{line: "Appendix B: Proofs", kind: SectionAppendix},
		{line: "Appendices", kind: SectionAppendix},
		{line: "Supplementary Material", kind: SectionAppendix},
	}
	for _, tc := range cases {
		r, ok := m.Match(tc.line)
		if !ok {
			t.Fatalf("Match(%q) found nothing, want %s", tc.line, tc.kind)
		}
		if r.Kind != tc.kind {
			t.Fatalf("Match(%q) = %s (%s), want %s", tc.line, r.Kind, r.Name, tc.kind)
		}
		if !m.MatchKind(tc.line, tc.kind) {
			t.Fatalf("MatchKind(%q, %s) = false", tc.line, tc.kind)
		}
	}
}

func TestSectionMatcherIgnoresProse(t *testing.T) {
	m := NewSectionMatcher()
	for _, line := range []string{
		"Introduction",
		"The proposed method improves accuracy on several benchmark tasks today.",
		"1. we describe the setup",
		"Related Work",
		"",
	} {
		if r, ok := m.Match(line); ok {
			t.Fatalf("Match(%q) unexpectedly matched rule %s", line, r.Name)
		}
	}
}

func TestNumberedReferenceNeedsCorroboration(t *testing.T) {
	m := NewSectionMatcher()

	r, ok := m.Match("1. Smith, J. Learning things. 2020.")
	if !ok {
		t.Fatalf("expected numbered reference candidate")
	}
	if r.Name != "reference_list_numbered" || !r.NeedsCorroboration {
		t.Fatalf("unexpected rule %+v", r)
	}

	r, ok = m.Match("1. Limitations")
	if !ok || r.Kind != SectionLimitations || r.NeedsCorroboration {
		t.Fatalf("standalone rule should win, got %+v", r)
	}
}

func TestRuleNamesAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, len(sectionRules))
	for _, r := range sectionRules {
		if _, dup := seen[r.Name]; dup {
			t.Fatalf("duplicate rule name %s", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
}

func TestSectionKindString(t *testing.T) {
	if SectionAppendix.String() != "appendix" || SectionKind(42).String() != "unknown" {
		t.Fatalf("unexpected kind names")
	}
}
