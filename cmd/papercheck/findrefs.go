package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kirillkom/papercheck/internal/core/checker"
	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/infrastructure/extractor/pdftext"
)

const citationDenseLines = 3

// runFindRefs dumps the last pages of a PDF with the boundary the classifier
// settles on, for tuning the section rules against a real submission.
func runFindRefs(ctx context.Context, env *environment, args []string) (int, error) {
	fs := flag.NewFlagSet("find-refs", flag.ContinueOnError)
	lookback := fs.Int("pages", 10, "number of trailing pages to dump")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitInvocation, err
	}
	if len(positional) != 1 {
		return exitInvocation, usagef("find-refs takes exactly one PDF")
	}
	if *lookback <= 0 {
		return exitInvocation, usagef("-pages must be positive")
	}
	path := positional[0]

	extractor := pdftext.NewFileExtractor(pdftext.Options{Preflight: env.cfg.PreflightPDF, MaxBytes: env.cfg.UploadMaxBytes})
	texts, err := extractor.ExtractPages(ctx, path)
	if err != nil {
		return exitHasErrors, fmt.Errorf("analyze %s: %w", path, err)
	}
	for i := range texts {
		texts[i] = checker.NormalizeText(texts[i])
	}

	matcher := checker.NewSectionMatcher()
	dump := referenceDump{
		path:       path,
		texts:      texts,
		pageCount:  structurePageCount(path),
		matcher:    matcher,
		classifier: checker.NewContentPageClassifier(matcher, env.cfg.Classifier),
	}
	dump.write(env.stdout, *lookback)
	return exitOK, nil
}

// structurePageCount returns 0 when the count cannot be read. The dump then
// skips the cross-check.
func structurePageCount(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, err := pdftext.PageCount(raw)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("page_count_failed")
		return 0
	}
	return n
}

type referenceDump struct {
	path       string
	texts      []string
	pageCount  int
	matcher    *checker.SectionMatcher
	classifier *checker.ContentPageClassifier
}

func (d referenceDump) write(w io.Writer, lookback int) {
	texts, classifier := d.texts, d.classifier

	fmt.Fprintf(w, "Searching for references in: %s\n", d.path)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Total pages: %d\n", len(texts))
	if d.pageCount > 0 && d.pageCount != len(texts) {
		fmt.Fprintf(w, "Warning: document structure has %d pages, text was read from %d\n", d.pageCount, len(texts))
	}

	if boundary, ok := classifier.FindBoundary(texts); ok {
		fmt.Fprintf(w, "Boundary: page %d line %d (%s, rule %s, mid-page %t): %q\n",
			boundary.Page+1, boundary.Line+1, boundary.Kind, boundary.Rule, boundary.MidPage, boundary.Text)
	} else {
		fmt.Fprintln(w, "Boundary: none found, pages judged one by one")
	}
	fmt.Fprintf(w, "Content pages: %d\n", classifier.ContentPages(texts))

	pages := domain.PagesFromText(texts)
	for _, page := range pages[max(0, len(pages)-lookback):] {
		lines := checker.SplitLines(page.Text)
		fmt.Fprintf(w, "\n--- PAGE %d ---\n", page.Index+1)

		citations := 0
		for i, line := range lines {
			fmt.Fprintf(w, "%2d: %s\n", i+1, line)
			if checker.IsCitationLine(line) {
				citations++
			}
		}
		for _, line := range lines {
			if d.matcher.MatchKind(line, checker.SectionReferences) {
				fmt.Fprintf(w, "\n*** FOUND POTENTIAL REFERENCES MARKER: '%s' ***\n", line)
			}
		}
		if citations > citationDenseLines {
			fmt.Fprintf(w, "\n*** PAGE HAS %d CITATION-LIKE LINES ***\n", citations)
		}
		if classifier.PageIsExcluded(page.Text) {
			fmt.Fprintln(w, "(page excluded when judged alone)")
		}
	}
}
