package checker

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

func TestPageLimitDetector(t *testing.T) {
	cases := []struct {
		paperType domain.PaperType
		pages     int
		severity  domain.Severity
		wantIssue bool
	}{
		{paperType: domain.PaperShort, pages: 5, severity: domain.SeverityError, wantIssue: true},
		{paperType: domain.PaperShort, pages: 4, severity: domain.SeverityInfo, wantIssue: true},
		{paperType: domain.PaperShort, pages: 3},
		{paperType: domain.PaperLong, pages: 9, severity: domain.SeverityError, wantIssue: true},
		{paperType: domain.PaperLong, pages: 8, severity: domain.SeverityInfo, wantIssue: true},
		{paperType: domain.PaperLong, pages: 0},
	}
	for _, tc := range cases {
		issues := PageLimitDetector{}.Detect(Input{ContentPages: tc.pages, PaperType: tc.paperType})
		if !tc.wantIssue {
			if len(issues) != 0 {
				t.Fatalf("%s/%d: expected no issue, got %+v", tc.paperType, tc.pages, issues)
			}
			continue
		}
		if len(issues) != 1 {
			t.Fatalf("%s/%d: expected exactly one issue, got %+v", tc.paperType, tc.pages, issues)
		}
		if issues[0].Kind != domain.IssuePageLimit || issues[0].Severity != tc.severity {
			t.Fatalf("%s/%d: unexpected issue %+v", tc.paperType, tc.pages, issues[0])
		}
	}
}

func TestPageLimitMessages(t *testing.T) {
	over := PageLimitDetector{}.Detect(Input{ContentPages: 9, PaperType: domain.PaperLong})[0]
	if over.Message != "Paper exceeds page limit for long paper" || over.Details != "Found 9 content pages, limit is 8 pages" {
		t.Fatalf("unexpected error wording: %+v", over)
	}
	at := PageLimitDetector{}.Detect(Input{ContentPages: 4, PaperType: domain.PaperShort})[0]
	if at.Message != "Paper is at the page limit for short paper" || at.Details != "4 content pages (limit: 4)" {
		t.Fatalf("unexpected info wording: %+v", at)
	}
}

func TestLimitationsFound(t *testing.T) {
	d := NewLimitationsDetector(nil)
	text := "4. Results\nWe beat the baseline.\n5. Limitations\nOur data covers English only.\n"
	if issues := d.Detect(Input{Text: text}); len(issues) != 0 {
		t.Fatalf("expected section to be found, got %+v", issues)
	}
}

func TestLimitationsMissing(t *testing.T) {
	d := NewLimitationsDetector(nil)
	issues := d.Detect(Input{Text: "1. Introduction\nWe study parsing.\nReferences\n"})
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %+v", issues)
	}
	if issues[0].Kind != domain.IssueMissingLimitations || issues[0].Severity != domain.SeverityError {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
}

func TestLimitationsMentionInProseIsNotASection(t *testing.T) {
	d := NewLimitationsDetector(nil)
	text := "We discuss the limitations of prior work in detail below.\n"
	if issues := d.Detect(Input{Text: text}); len(issues) != 1 {
		t.Fatalf("a mid-sentence mention must not count, got %+v", issues)
	}
}

func TestAnonymizationFindsEmail(t *testing.T) {
	issues := NewAnonymizationDetector().Detect(Input{Text: "Contact: x@uni.edu"})
	if len(issues) == 0 {
		t.Fatalf("expected at least one issue")
	}
	for _, issue := range issues {
		if issue.Severity != domain.SeverityWarning || issue.Kind != domain.IssueAnonymization {
			t.Fatalf("unexpected issue %+v", issue)
		}
	}
	if !strings.Contains(issues[0].Details, "x@uni.edu") {
		t.Fatalf("expected email in details, got %q", issues[0].Details)
	}
}

func TestAnonymizationInstitutions(t *testing.T) {
	text := "Work done at Stanford University.\nAuthors: Jane Doe\n"
	issues := NewAnonymizationDetector().Detect(Input{Text: text})
	if len(issues) != 2 {
		t.Fatalf("expected institution and author issues, got %+v", issues)
	}
	if !strings.HasPrefix(issues[0].Details, "Found: 'Stanford University'") {
		t.Fatalf("unexpected details %q", issues[0].Details)
	}
	if none := NewAnonymizationDetector().Detect(Input{Text: "a university study of institute funding"}); len(none) != 0 {
		t.Fatalf("lowercase mentions should not be flagged, got %+v", none)
	}
}

func TestBrokenReferences(t *testing.T) {
	issues := NewBrokenReferenceDetector().Detect(Input{Text: "results in ?? and also [??]"})
	if len(issues) < 2 {
		t.Fatalf("expected at least two issues, got %+v", issues)
	}
	bracket := false
	for _, issue := range issues {
		if issue.Severity != domain.SeverityWarning {
			t.Fatalf("unexpected severity %+v", issue)
		}
		if !strings.Contains(issue.Details, "??") {
			t.Fatalf("details should contain ??: %q", issue.Details)
		}
		if strings.Contains(issue.Details, "Found: '[??]'") {
			bracket = true
		}
	}
	if !bracket {
		t.Fatalf("expected an issue for the bracket form, got %+v", issues)
	}
}

func TestEthicsReportedOnce(t *testing.T) {
	text := "7 Ethical Considerations\nWe follow the guidelines.\nEthics\nMore text.\n"
	issues := NewEthicsDetector().Detect(Input{Text: text})
	if len(issues) != 1 {
		t.Fatalf("expected a single issue, got %+v", issues)
	}
	if issues[0].Kind != domain.IssueEthicalConsiderations || issues[0].Severity != domain.SeverityWarning {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
}

func TestEthicsFusedRunningHeader(t *testing.T) {
	issues := NewEthicsDetector().Detect(Input{Text: "588 EthicalConsiderations This work uses public data.\n"})
	if len(issues) != 1 {
		t.Fatalf("expected fused header to be found, got %+v", issues)
	}
}

func TestDetectorsAreIdempotent(t *testing.T) {
	in := Input{
		Text:         "Authors: Jane\nsee ?? and (Fig. ??)\nEthics\n5. Limitations\n",
		ContentPages: 4,
		PaperType:    domain.PaperShort,
	}
	for _, d := range DefaultDetectors(nil) {
		first := d.Detect(in)
		second := d.Detect(in)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s is not idempotent: %+v vs %+v", d.Name(), first, second)
		}
	}
}

func TestDetectorsAcceptEmptyText(t *testing.T) {
	var total []domain.Issue
	for _, d := range DefaultDetectors(nil) {
		total = append(total, d.Detect(Input{PaperType: domain.PaperLong})...)
	}
	if len(total) != 1 || total[0].Kind != domain.IssueMissingLimitations {
		t.Fatalf("empty text should only miss limitations, got %+v", total)
	}
}

func TestDefaultDetectorOrder(t *testing.T) {
	var names []string
	for _, d := range DefaultDetectors(nil) {
		names = append(names, d.Name())
	}
	want := []string{"page_limit", "missing_limitations", "anonymization", "broken_references", "ethical_considerations"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("detector order = %v, want %v", names, want)
	}
}
