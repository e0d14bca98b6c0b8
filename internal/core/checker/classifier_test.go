package checker

import (
	"fmt"
	"strings"
	"testing"
)

const proseLine = "The proposed method improves accuracy on several benchmark tasks today."

func prosePage(lines int) string {
	return strings.Repeat(proseLine+"\n", lines)
}

func referencePage(first, count int) string {
	var b strings.Builder
	for i := first; i < first+count; i++ {
		fmt.Fprintf(&b, "[%d] A. Smith and B. Jones. Learning from data. In Proceedings of ACL, 2020.\n", i)
	}
	return b.String()
}

func TestContentPagesMidPageReferences(t *testing.T) {
	pages := make([]string, 0, 10)
	for i := 0; i < 7; i++ {
		pages = append(pages, prosePage(20))
	}
	pages = append(pages, prosePage(15)+"References\n"+referencePage(1, 5))
	pages = append(pages, referencePage(6, 20), referencePage(26, 20))

	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	if got := c.ContentPages(pages); got != 8 {
		t.Fatalf("ContentPages() = %d, want 8", got)
	}

	b, ok := c.FindBoundary(pages)
	if !ok {
		t.Fatalf("expected a boundary")
	}
	if b.Page != 7 || b.Line != 15 || !b.MidPage || b.Kind != SectionReferences {
		t.Fatalf("unexpected boundary: %+v", b)
	}
}

func TestContentPagesZeroPages(t *testing.T) {
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	if got := c.ContentPages(nil); got != 0 {
		t.Fatalf("ContentPages(nil) = %d, want 0", got)
	}
}

func TestContentPagesBoundaryAtPageStart(t *testing.T) {
	pages := []string{
		prosePage(30),
		prosePage(30),
		"References\n" + referencePage(1, 10),
		"Appendix A\n" + prosePage(10),
	}
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	if got := c.ContentPages(pages); got != 2 {
		t.Fatalf("ContentPages() = %d, want 2", got)
	}
}

func TestContentPagesMidPageByProseCount(t *testing.T) {
	// Header on line 6, but six prose lines precede it.
	pages := []string{prosePage(30), prosePage(6) + "Limitations\n" + prosePage(3)}
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	if got := c.ContentPages(pages); got != 2 {
		t.Fatalf("ContentPages() = %d, want 2", got)
	}
}

func TestContentPagesBracketListIsBoundary(t *testing.T) {
	pages := []string{
		prosePage(30),
		prosePage(30),
		referencePage(1, 20),
		"",
	}
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	b, ok := c.FindBoundary(pages)
	if !ok || b.Rule != "reference_list_bracket" {
		t.Fatalf("bracket reference list should be a boundary, got %+v ok=%v", b, ok)
	}
	if got := c.ContentPages(pages); got != 2 {
		t.Fatalf("ContentPages() = %d, want 2", got)
	}
}

func TestContentPagesFallbackExcludesCitationPages(t *testing.T) {
	authorYear := strings.Repeat("Smith and Jones. (2020). A title of the cited work here.\n", 15)
	pages := []string{prosePage(30), prosePage(30), authorYear, ""}

	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	if b, ok := c.FindBoundary(pages); ok {
		t.Fatalf("unexpected boundary %+v", b)
	}
	if got := c.ContentPages(pages); got != 2 {
		t.Fatalf("ContentPages() = %d, want 2", got)
	}
}

func TestContentPagesFallbackAtLeastOne(t *testing.T) {
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	if got := c.ContentPages([]string{"", "   \n"}); got != 1 {
		t.Fatalf("ContentPages() = %d, want 1", got)
	}
}

func TestNumberedCandidateWithoutListIsIgnored(t *testing.T) {
	pages := []string{
		"1. Introduction\n" + prosePage(20),
		prosePage(20),
	}
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	if _, ok := c.FindBoundary(pages); ok {
		t.Fatalf("a numbered heading followed by prose is not a reference list")
	}
	if got := c.ContentPages(pages); got != 2 {
		t.Fatalf("ContentPages() = %d, want 2", got)
	}
}

func TestNumberedReferenceListIsCorroborated(t *testing.T) {
	list := "1. Smith, J. Learning things. 2020.\n2. Doe, K. Other things. 2019.\n3. Roe, L. More. 2018.\n"
	pages := []string{prosePage(30), prosePage(30), list}

	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	b, ok := c.FindBoundary(pages)
	if !ok || b.Rule != "reference_list_numbered" {
		t.Fatalf("expected corroborated numbered list, got %+v ok=%v", b, ok)
	}
	if got := c.ContentPages(pages); got != 2 {
		t.Fatalf("ContentPages() = %d, want 2", got)
	}
}

func TestNumberedLimitationsHeaderIsBoundaryWithoutList(t *testing.T) {
	pages := []string{
		prosePage(30),
		prosePage(30),
		"1. Limitations\n" + prosePage(10),
	}
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())

	b, ok := c.FindBoundary(pages)
	if !ok {
		t.Fatalf("a lone numbered limitations header should be a boundary")
	}
	if b.Kind != SectionLimitations || b.Rule == "reference_list_numbered" || b.Page != 2 || b.MidPage {
		t.Fatalf("unexpected boundary: %+v", b)
	}
	if got := c.ContentPages(pages); got != 2 {
		t.Fatalf("ContentPages() = %d, want 2", got)
	}
}

func TestCorroborationThresholdIsConfigurable(t *testing.T) {
	list := "1. Smith, J. Learning things. 2020.\n2. Doe, K. Other things. 2019.\n"
	pages := []string{prosePage(30), list}

	strict := NewContentPageClassifier(nil, ClassifierConfig{CorroborationMinLines: 3})
	if _, ok := strict.FindBoundary(pages); ok {
		t.Fatalf("two list lines should not satisfy a threshold of three")
	}
	if strict.Config().CorroborationWindow != 5 {
		t.Fatalf("unset fields should take defaults, got %+v", strict.Config())
	}
}

func TestPageIsExcluded(t *testing.T) {
	c := NewContentPageClassifier(nil, DefaultClassifierConfig())
	cases := []struct {
		name string
		page string
		want bool
	}{
		{name: "empty", page: " \n ", want: true},
		{name: "prose", page: prosePage(10), want: false},
		{name: "citations", page: referencePage(1, 10), want: true},
		{name: "appendix keywords", page: "See the appendix for supplementary figures.\n" + prosePage(5), want: true},
		{name: "one keyword", page: "Details are in the appendix of this work.\n" + prosePage(5), want: false},
	}
	for _, tc := range cases {
		if got := c.PageIsExcluded(tc.page); got != tc.want {
			t.Fatalf("%s: PageIsExcluded() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsCitationLine(t *testing.T) {
	for _, line := range []string{
		"[12] Vaswani et al. Attention is all you need.",
		"3. Devlin, J. BERT. 2019.",
		"Smith and Jones. (2020). A title.",
	} {
		if !IsCitationLine(line) {
			t.Fatalf("IsCitationLine(%q) = false", line)
		}
	}
	if IsCitationLine(proseLine) {
		t.Fatalf("prose should not look like a citation")
	}
}
