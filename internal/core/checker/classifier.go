package checker

import (
	"regexp"
	"strings"
)

// ClassifierConfig holds the tuned thresholds of the content page heuristic.
type ClassifierConfig struct {
	// CorroborationWindow is how many lines, starting at a numbered
	// reference candidate, are inspected for further list entries.
	CorroborationWindow int `yaml:"corroboration_window"`
	// CorroborationMinLines is how many list-like lines that window needs.
	CorroborationMinLines int `yaml:"corroboration_min_lines"`
	// MidPageLineIndex: a header found after this line index splits its page.
	MidPageLineIndex int `yaml:"mid_page_line_index"`
	// MidPageProseLines: more prose lines than this before a header also split.
	MidPageProseLines int `yaml:"mid_page_prose_lines"`
	// ProseWordCount: a line with more words than this counts as prose.
	ProseWordCount int `yaml:"prose_word_count"`
	// SubstantialWordCount: fallback mode ignores lines with fewer words.
	SubstantialWordCount int `yaml:"substantial_word_count"`
	// ReferenceDensity: fallback excludes a page whose share of
	// citation-shaped substantial lines exceeds this.
	ReferenceDensity float64 `yaml:"reference_density"`
	// AppendixIndicatorMin: fallback excludes a page with this many appendix
	// keywords.
	AppendixIndicatorMin int `yaml:"appendix_indicator_min"`
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		CorroborationWindow:   5,
		CorroborationMinLines: 2,
		MidPageLineIndex:      10,
		MidPageProseLines:     5,
		ProseWordCount:        3,
		SubstantialWordCount:  3,
		ReferenceDensity:      0.7,
		AppendixIndicatorMin:  2,
	}
}

func (c ClassifierConfig) normalize() ClassifierConfig {
	out := c
	def := DefaultClassifierConfig()

	if out.CorroborationWindow <= 0 {
		out.CorroborationWindow = def.CorroborationWindow
	}
	if out.CorroborationMinLines <= 0 {
		out.CorroborationMinLines = def.CorroborationMinLines
	}
	if out.MidPageLineIndex <= 0 {
		out.MidPageLineIndex = def.MidPageLineIndex
	}
	if out.MidPageProseLines <= 0 {
		out.MidPageProseLines = def.MidPageProseLines
	}
	if out.ProseWordCount <= 0 {
		out.ProseWordCount = def.ProseWordCount
	}
	if out.SubstantialWordCount <= 0 {
		out.SubstantialWordCount = def.SubstantialWordCount
	}
	if out.ReferenceDensity <= 0 || out.ReferenceDensity > 1 {
		out.ReferenceDensity = def.ReferenceDensity
	}
	if out.AppendixIndicatorMin <= 0 {
		out.AppendixIndicatorMin = def.AppendixIndicatorMin
	}
	return out
}

// Boundary is where the main body ends and excluded material begins.
type Boundary struct {
	Page    int
	Line    int
	MidPage bool
	Rule    string
	Kind    SectionKind
	Text    string
}

var (
	citationShapes = []*regexp.Regexp{
		bracketReferenceLine,
		numberedReferenceLine,
		regexp.MustCompile(`^\s*[A-Z][^.]*\.\s*\([12]\d{3}\)`),
		regexp.MustCompile(`^\s*[A-Z][^.]*\.\s+[A-Z][^.]*\.\s+\([12]\d{3}\)`),
	}
	appendixIndicators = []*regexp.Regexp{
		regexp.MustCompile(`\bappendix\b`),
		regexp.MustCompile(`\bsupplementary\b`),
		regexp.MustCompile(`\badditional\s+results\b`),
		regexp.MustCompile(`\bdetailed\s+proofs\b`),
	}
)

// ContentPageClassifier counts the pages that count toward the page limit.
type ContentPageClassifier struct {
	cfg     ClassifierConfig
	matcher *SectionMatcher
}

func NewContentPageClassifier(matcher *SectionMatcher, cfg ClassifierConfig) *ContentPageClassifier {
	if matcher == nil {
		matcher = NewSectionMatcher()
	}
	return &ContentPageClassifier{cfg: cfg.normalize(), matcher: matcher}
}

func (c *ContentPageClassifier) Config() ClassifierConfig {
	return c.cfg
}

// ContentPages returns 0 for no pages. A boundary found mid-page keeps its
// page; a boundary at the top of a page drops it. Without any boundary, pages
// are judged one by one and at least one page is always reported.
func (c *ContentPageClassifier) ContentPages(pages []string) int {
	if len(pages) == 0 {
		return 0
	}

	if boundary, ok := c.FindBoundary(pages); ok {
		if boundary.MidPage {
			return boundary.Page + 1
		}
		return boundary.Page
	}

	count := 0
	for _, page := range pages {
		if !c.PageIsExcluded(page) {
			count++
		}
	}
	return max(1, count)
}

func (c *ContentPageClassifier) FindBoundary(pages []string) (Boundary, bool) {
	for pageIdx, page := range pages {
		lines := SplitLines(page)
		for lineIdx, line := range lines {
			r, ok := c.matcher.Match(line)
			if !ok {
				continue
			}
			if r.NeedsCorroboration && !c.looksLikeReferenceList(lines, lineIdx) {
				continue
			}
			return Boundary{
				Page:    pageIdx,
				Line:    lineIdx,
				MidPage: c.isMidPage(lines, lineIdx),
				Rule:    r.Name,
				Kind:    r.Kind,
				Text:    line,
			}, true
		}
	}
	return Boundary{}, false
}

func (c *ContentPageClassifier) isMidPage(lines []string, lineIdx int) bool {
	if lineIdx > c.cfg.MidPageLineIndex {
		return true
	}
	prose := 0
	for _, line := range lines[:lineIdx] {
		if wordCount(line) > c.cfg.ProseWordCount {
			prose++
		}
	}
	return prose > c.cfg.MidPageProseLines
}

// looksLikeReferenceList counts list-shaped lines in the window that starts
// at the candidate itself.
func (c *ContentPageClassifier) looksLikeReferenceList(lines []string, start int) bool {
	end := min(start+c.cfg.CorroborationWindow, len(lines))
	hits := 0
	for _, line := range lines[start:end] {
		if numberedReferenceLine.MatchString(line) || bracketReferenceLine.MatchString(line) {
			hits++
		}
	}
	return hits >= c.cfg.CorroborationMinLines
}

// PageIsExcluded judges a single page in isolation: empty pages, pages made
// mostly of citations and pages with several appendix keywords are excluded.
func (c *ContentPageClassifier) PageIsExcluded(page string) bool {
	lines := SplitLines(page)
	if len(lines) == 0 {
		return true
	}

	substantial, citations := 0, 0
	for _, line := range lines {
		if wordCount(line) < c.cfg.SubstantialWordCount {
			continue
		}
		substantial++
		if IsCitationLine(line) {
			citations++
		}
	}
	if substantial > 0 && float64(citations)/float64(substantial) > c.cfg.ReferenceDensity {
		return true
	}

	lower := strings.ToLower(page)
	indicators := 0
	for _, re := range appendixIndicators {
		if re.MatchString(lower) {
			indicators++
		}
	}
	return indicators >= c.cfg.AppendixIndicatorMin
}

// IsCitationLine reports whether line has the shape of a bibliography entry.
func IsCitationLine(line string) bool {
	for _, re := range citationShapes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
