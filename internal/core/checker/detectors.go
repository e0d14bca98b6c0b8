package checker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

// Input is what every detector may look at. Text is the newline-joined text
// of all pages.
type Input struct {
	Text         string
	ContentPages int
	PaperType    domain.PaperType
}

// Detector evaluates one submission rule. Implementations never fail: any
// input, including the empty string, yields a (possibly empty) issue list.
type Detector interface {
	Name() string
	Detect(in Input) []domain.Issue
}

// DefaultDetectors returns the detectors in reporting order.
func DefaultDetectors(matcher *SectionMatcher) []Detector {
	if matcher == nil {
		matcher = NewSectionMatcher()
	}
	return []Detector{
		PageLimitDetector{},
		LimitationsDetector{matcher: matcher},
		NewAnonymizationDetector(),
		NewBrokenReferenceDetector(),
		NewEthicsDetector(),
	}
}

type PageLimitDetector struct{}

func (PageLimitDetector) Name() string { return "page_limit" }

func (PageLimitDetector) Detect(in Input) []domain.Issue {
	limit := in.PaperType.PageLimit()
	desc := in.PaperType.Description()

	switch {
	case in.ContentPages > limit:
		return []domain.Issue{{
			Kind:     domain.IssuePageLimit,
			Severity: domain.SeverityError,
			Message:  "Paper exceeds page limit for " + desc,
			Details:  fmt.Sprintf("Found %d content pages, limit is %d pages", in.ContentPages, limit),
		}}
	case in.ContentPages == limit:
		return []domain.Issue{{
			Kind:     domain.IssuePageLimit,
			Severity: domain.SeverityInfo,
			Message:  "Paper is at the page limit for " + desc,
			Details:  fmt.Sprintf("%d content pages (limit: %d)", in.ContentPages, limit),
		}}
	default:
		return nil
	}
}

type LimitationsDetector struct {
	matcher *SectionMatcher
}

func NewLimitationsDetector(matcher *SectionMatcher) LimitationsDetector {
	if matcher == nil {
		matcher = NewSectionMatcher()
	}
	return LimitationsDetector{matcher: matcher}
}

func (LimitationsDetector) Name() string { return "missing_limitations" }

// Detect accepts any section header line that also names limitations; the
// keyword check filters out lines that only matched another section kind.
func (d LimitationsDetector) Detect(in Input) []domain.Issue {
	for _, line := range strings.Split(in.Text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(strings.ToLower(line), "limitation") {
			continue
		}
		if _, ok := d.matcher.Match(line); ok {
			return nil
		}
	}
	return []domain.Issue{{
		Kind:     domain.IssueMissingLimitations,
		Severity: domain.SeverityError,
		Message:  "Missing required 'Limitations' section",
		Details:  "Papers must include a section discussing limitations",
	}}
}

// patternDetector reports one issue per regexp match, pattern by pattern.
type patternDetector struct {
	name     string
	kind     domain.IssueKind
	message  string
	radius   int
	patterns []*regexp.Regexp
	// firstOnly stops after the first match across all patterns.
	firstOnly bool
}

func (d patternDetector) Name() string { return d.name }

func (d patternDetector) Detect(in Input) []domain.Issue {
	var issues []domain.Issue
	for _, re := range d.patterns {
		for _, loc := range re.FindAllStringIndex(in.Text, -1) {
			found := strings.TrimSpace(strings.ReplaceAll(in.Text[loc[0]:loc[1]], "\n", " "))
			issues = append(issues, domain.Issue{
				Kind:     d.kind,
				Severity: domain.SeverityWarning,
				Message:  d.message,
				Details:  fmt.Sprintf("Found: '%s' in context: '...%s...'", found, snippet(in.Text, loc[0], loc[1], d.radius)),
			})
			if d.firstOnly {
				return issues
			}
		}
	}
	return issues
}

func NewAnonymizationDetector() Detector {
	return patternDetector{
		name:    "anonymization",
		kind:    domain.IssueAnonymization,
		message: "Potential anonymization issue detected",
		radius:  50,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b[A-Z][a-z]+ University\b`),
			regexp.MustCompile(`\b[A-Z][a-z]+ Institute\b`),
			regexp.MustCompile(`\b[A-Z][a-z]+ College\b`),
			regexp.MustCompile(`@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
			regexp.MustCompile(`\b(?:Author|Authors?):\s*[A-Z]`),
			regexp.MustCompile(`\b(?:Affiliation|Department):\s*[A-Z]`),
			regexp.MustCompile(`\{[a-z]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\}`),
		},
	}
}

// NewBrokenReferenceDetector flags unresolved "??" cross references. The
// bracketed and parenthesized shapes overlap the bare one on purpose, so a
// single "[??]" is reported twice.
func NewBrokenReferenceDetector() Detector {
	return patternDetector{
		name:    "broken_references",
		kind:    domain.IssueBrokenReferences,
		message: "Broken reference detected",
		radius:  50,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\?\?`),
			regexp.MustCompile(`\[.*\?\?.*\]`),
			regexp.MustCompile(`\(.*\?\?.*\)`),
		},
	}
}

// NewEthicsDetector reports the presence of an ethics section once.
func NewEthicsDetector() Detector {
	return patternDetector{
		name:      "ethical_considerations",
		kind:      domain.IssueEthicalConsiderations,
		message:   "Ethical considerations section found",
		radius:    30,
		firstOnly: true,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*\d*\.?\s*ethical?\s+considerations?\s*$`),
			regexp.MustCompile(`(?im)^\s*\d*\.?\s*ethicalconsiderations?\s*$`),
			regexp.MustCompile(`(?im)^\s*\d{1,4}\s+ethicalconsiderations?\s+`),
			regexp.MustCompile(`(?im)^\s*\d*\.?\s*ethics?\s*$`),
			regexp.MustCompile(`(?im)^\s*\d{1,3}\.\s*ethical?\s+considerations?\s*$`),
			regexp.MustCompile(`(?im)^\s*\d{1,3}\s+ethical?\s+considerations?\s*$`),
			regexp.MustCompile(`(?im)\b\d{1,4}\s+ethical?\s+considerations?\b`),
			regexp.MustCompile(`(?im)\bethical?\s+considerations?\s*$`),
			regexp.MustCompile(`(?im)\bethicalconsiderations?\s*$`),
			regexp.MustCompile(`(?im)\bethics?\s*$`),
		},
	}
}
