package usecase

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kirillkom/papercheck/internal/core/checker"
	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

// CheckUseCase runs the full check on one or many documents.
type CheckUseCase struct {
	extractor  ports.PageExtractor
	classifier *checker.ContentPageClassifier
	detectors  []checker.Detector
	progress   ports.ProgressReporter
}

func NewCheckUseCase(
	extractor ports.PageExtractor,
	classifier *checker.ContentPageClassifier,
	detectors []checker.Detector,
	progress ports.ProgressReporter,
) *CheckUseCase {
	if classifier == nil {
		classifier = checker.NewContentPageClassifier(nil, checker.DefaultClassifierConfig())
	}
	if len(detectors) == 0 {
		detectors = checker.DefaultDetectors(nil)
	}
	if progress == nil {
		progress = ports.NopProgress{}
	}
	return &CheckUseCase{
		extractor:  extractor,
		classifier: classifier,
		detectors:  detectors,
		progress:   progress,
	}
}

// CheckDocument never fails: an unreadable document yields a result with a
// single error issue describing the extraction failure.
func (uc *CheckUseCase) CheckDocument(ctx context.Context, path string, paperType domain.PaperType) domain.CheckResult {
	started := time.Now()
	result := domain.CheckResult{
		Document:  path,
		PaperType: paperType,
		Issues:    []domain.Issue{},
	}

	pages, err := uc.extractor.ExtractPages(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("document", path).Msg("check_document_extraction_failed")
		result.Issues = append(result.Issues, extractionFailure(err))
		return result
	}

	for i := range pages {
		pages[i] = checker.NormalizeText(pages[i])
	}

	result.TotalPages = len(pages)
	result.ContentPages = uc.classifier.ContentPages(pages)

	in := checker.Input{
		Text:         strings.Join(pages, "\n"),
		ContentPages: result.ContentPages,
		PaperType:    paperType,
	}
	for _, detector := range uc.detectors {
		result.Issues = append(result.Issues, detector.Detect(in)...)
	}

	log.Debug().
		Str("document", path).
		Str("paper_type", string(paperType)).
		Int("total_pages", result.TotalPages).
		Int("content_pages", result.ContentPages).
		Int("errors", result.Count(domain.SeverityError)).
		Int("warnings", result.Count(domain.SeverityWarning)).
		Dur("duration", time.Since(started)).
		Msg("check_document")

	return result
}

// CheckCollection lazily checks paths in order. It stops when ctx is
// cancelled between documents or when the consumer stops iterating.
func (uc *CheckUseCase) CheckCollection(ctx context.Context, paths []string, paperType domain.PaperType) iter.Seq[domain.CheckResult] {
	return func(yield func(domain.CheckResult) bool) {
		uc.progress.Start(len(paths))
		defer uc.progress.Finish()

		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			result := uc.CheckDocument(ctx, path, paperType)
			uc.progress.Advance(path)
			if !yield(result) {
				return
			}
		}
	}
}

// CheckDirectory checks every *.pdf directly inside dir in name order. A
// missing directory or an empty one is reported as a notice and yields
// nothing.
func (uc *CheckUseCase) CheckDirectory(ctx context.Context, dir string, paperType domain.PaperType) iter.Seq[domain.CheckResult] {
	paths, err := ListPDFs(dir)
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		uc.progress.Notice("error", fmt.Sprintf("Directory '%s' does not exist", dir))
		return func(func(domain.CheckResult) bool) {}
	case err != nil:
		uc.progress.Notice("error", err.Error())
		return func(func(domain.CheckResult) bool) {}
	case len(paths) == 0:
		uc.progress.Notice("warning", fmt.Sprintf("No PDF files found in '%s'", dir))
		return func(func(domain.CheckResult) bool) {}
	}
	return uc.CheckCollection(ctx, paths, paperType)
}

// ListPDFs returns the sorted *.pdf files directly inside dir.
func ListPDFs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list pdfs", fmt.Errorf("directory %s does not exist", dir))
	}
	if !info.IsDir() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list pdfs", fmt.Errorf("%s is not a directory", dir))
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("glob pdfs: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func extractionFailure(err error) domain.Issue {
	return domain.Issue{
		Kind:     domain.IssuePageLimit,
		Severity: domain.SeverityError,
		Message:  "Failed to process PDF: " + err.Error(),
	}
}
