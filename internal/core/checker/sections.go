package checker

import (
	"regexp"
)

type SectionKind int

const (
	SectionLimitations SectionKind = iota
	SectionEthics
	SectionReferences
	SectionAppendix
)

func (k SectionKind) String() string {
	switch k {
	case SectionLimitations:
		return "limitations"
	case SectionEthics:
		return "ethics"
	case SectionReferences:
		return "references"
	case SectionAppendix:
		return "appendix"
	default:
		return "unknown"
	}
}

// SectionRule recognizes one header shape of one section kind.
type SectionRule struct {
	Name string
	Kind SectionKind
	// NeedsCorroboration marks shapes that also occur in ordinary numbered
	// prose; a match only counts once the following lines look like a list.
	NeedsCorroboration bool

	pattern *regexp.Regexp
}

func (r SectionRule) Match(line string) bool {
	return r.pattern.MatchString(line)
}

func rule(kind SectionKind, name, expr string) SectionRule {
	return SectionRule{Name: name, Kind: kind, pattern: regexp.MustCompile(`(?i)` + expr)}
}

var sectionRules = []SectionRule{
	rule(SectionLimitations, "limitations_exact", `^\s*\d*\.?\s*limitations?\s*$`),
	rule(SectionLimitations, "limitations_lettered", `^\s*[a-z]\)?\s*limitations?\s*$`),
	rule(SectionLimitations, "limitations_roman", `^\s*[ivxlcdm]+\.?\s*limitations?\s*$`),
	rule(SectionLimitations, "limitations_numbered_dot", `^\s*\d{1,3}\.\s*limitations?\s*$`),
	rule(SectionLimitations, "limitations_numbered_space", `^\s*\d{1,3}\s+limitations?\s*$`),
	rule(SectionLimitations, "limitations_line_start", `^\s*limitations?\s+`),
	rule(SectionLimitations, "limitations_running_number", `\b\d{1,4}\s+limitations?\b`),
	rule(SectionLimitations, "limitations_line_end", `\blimitations?\s*$`),

	rule(SectionEthics, "ethical_considerations_exact", `^\s*\d*\.?\s*ethical?\s+considerations?\s*$`),
	rule(SectionEthics, "ethical_considerations_fused", `^\s*\d*\.?\s*ethicalconsiderations?\s*$`),
	rule(SectionEthics, "ethical_considerations_fused_running_number", `^\s*\d{1,4}\s+ethicalconsiderations?\s+`),
	rule(SectionEthics, "ethics_exact", `^\s*\d*\.?\s*ethics?\s*$`),
	rule(SectionEthics, "ethical_considerations_numbered_dot", `^\s*\d{1,3}\.\s*ethical?\s+considerations?\s*$`),
	rule(SectionEthics, "ethical_considerations_numbered_space", `^\s*\d{1,3}\s+ethical?\s+considerations?\s*$`),
	rule(SectionEthics, "ethical_considerations_running_number", `\b\d{1,4}\s+ethical?\s+considerations?\b`),
	rule(SectionEthics, "ethical_considerations_line_end", `\bethical?\s+considerations?\s*$`),
	rule(SectionEthics, "ethical_considerations_fused_line_end", `\bethicalconsiderations?\s*$`),
	rule(SectionEthics, "ethics_line_end", `\bethics?\s*$`),

	rule(SectionReferences, "references_exact", `^\s*\d*\.?\s*references?\s*$`),
	rule(SectionReferences, "bibliography_exact", `^\s*\d*\.?\s*bibliography\s*$`),
	rule(SectionReferences, "references_numbered_dot", `^\s*\d{1,3}\.\s*references?\s*$`),
	rule(SectionReferences, "references_numbered_space", `^\s*\d{1,3}\s+references?\s*$`),
	rule(SectionReferences, "references_running_number", `\b\d{1,4}\s+references?\b`),
	rule(SectionReferences, "references_trailing_line_number", `\breferences?\s+\d{3,4}\s*$`),
	rule(SectionReferences, "references_line_end", `\breferences?\s*$`),
	rule(SectionReferences, "reference_list_bracket", `^\s*\[1\]`),
	{
		Name:               "reference_list_numbered",
		Kind:               SectionReferences,
		NeedsCorroboration: true,
		pattern:            numberedReferenceStart,
	},

	rule(SectionAppendix, "appendix_exact", `^\s*\d*\.?\s*appendix\s*[a-z]?\s*$`),
	rule(SectionAppendix, "appendices_exact", `^\s*\d*\.?\s*appendices\s*$`),
	rule(SectionAppendix, "appendix_numbered_dot", `^\s*\d{1,3}\.\s*appendix\s*[a-z]?\s*$`),
	rule(SectionAppendix, "appendix_numbered_space", `^\s*\d{1,3}\s+appendix\s*[a-z]?\s*$`),
	rule(SectionAppendix, "appendix_colon", `^\s*appendix\s*[a-z]?\s*:`),
	rule(SectionAppendix, "supplementary_material_line_end", `\bsupplementary\s+materials?\s*$`),
	rule(SectionAppendix, "additional_results_line_end", `\badditional\s+results\s*$`),
}

var (
	// "1. Author": the capital letter is significant, so no (?i) here.
	numberedReferenceStart = regexp.MustCompile(`^\s*1\.\s+[A-Z]`)
	numberedReferenceLine  = regexp.MustCompile(`^\s*\d+\.\s+[A-Z]`)
	bracketReferenceLine   = regexp.MustCompile(`^\s*\[\d+\]`)
)

// SectionMatcher is read-only after construction and safe for concurrent use.
type SectionMatcher struct {
	rules []SectionRule
}

func NewSectionMatcher() *SectionMatcher {
	return &SectionMatcher{rules: sectionRules}
}

// Match reports the first rule matching line. Rules that stand on their own
// win over rules that need corroboration, so "1. Limitations" resolves to a
// limitations header rather than a reference list candidate.
func (m *SectionMatcher) Match(line string) (SectionRule, bool) {
	var candidate *SectionRule
	for i := range m.rules {
		r := m.rules[i]
		if !r.Match(line) {
			continue
		}
		if !r.NeedsCorroboration {
			return r, true
		}
		if candidate == nil {
			candidate = &m.rules[i]
		}
	}
	if candidate != nil {
		return *candidate, true
	}
	return SectionRule{}, false
}

// MatchKind reports whether any rule of kind matches line, corroborated or
// not. Used for diagnostics where a loose hit is wanted.
func (m *SectionMatcher) MatchKind(line string, kind SectionKind) bool {
	for _, r := range m.rules {
		if r.Kind == kind && r.Match(line) {
			return true
		}
	}
	return false
}
