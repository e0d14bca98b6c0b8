package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

const defaultMaxBytes = 64 << 20

var disableConfigDir sync.Once

// Source opens the raw bytes behind a document handle.
type Source interface {
	Open(ctx context.Context, handle string) (io.ReadCloser, error)
}

type Options struct {
	// Preflight runs a relaxed pdfcpu validation before text extraction so
	// that structurally broken files fail with a readable reason.
	Preflight bool
	MaxBytes  int64
}

// Extractor turns a PDF into one plain-text string per page.
type Extractor struct {
	source    Source
	preflight bool
	maxBytes  int64
}

func NewExtractor(source Source, opts Options) *Extractor {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Preflight {
		disableConfigDir.Do(api.DisableConfigDir)
	}
	return &Extractor{source: source, preflight: opts.Preflight, maxBytes: opts.MaxBytes}
}

// NewFileExtractor reads documents straight from the filesystem.
func NewFileExtractor(opts Options) *Extractor {
	return NewExtractor(fileSource{}, opts)
}

type fileSource struct{}

func (fileSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (e *Extractor) ExtractPages(ctx context.Context, handle string) ([]string, error) {
	raw, err := e.read(ctx, handle)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "read pdf", err)
	}

	if e.preflight {
		if err := validate(raw); err != nil {
			return nil, domain.WrapError(domain.ErrExtraction, "validate pdf", err)
		}
	}

	pages, err := extract(ctx, raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "extract pdf text", err)
	}
	return pages, nil
}

func (e *Extractor) read(ctx context.Context, handle string) ([]byte, error) {
	rc, err := e.source.Open(ctx, handle)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, e.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > e.maxBytes {
		return nil, fmt.Errorf("document larger than %d bytes", e.maxBytes)
	}
	if len(raw) == 0 {
		return nil, errors.New("empty document")
	}
	return raw, nil
}

func validate(raw []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.Validate(bytes.NewReader(raw), conf)
}

// extract recovers from parser panics, which the pdf reader raises on some
// malformed content streams.
func extract(ctx context.Context, raw []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, pageText(reader.Page(i)))
	}
	return pages, nil
}

// Glyphs closer than lineTolerance points vertically share a line. A gap
// wider than wordGapRatio of the font size separates two words.
const (
	lineTolerance = 2.0
	wordGapRatio  = 0.15
	minWordGap    = 0.1
)

// pageText rebuilds lines from positioned glyphs and falls back to the plain
// content stream text when the page cannot be laid out.
func pageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}
	if lines, ok := glyphLines(page); ok {
		return strings.Join(lines, "\n")
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// glyphLines groups glyphs top to bottom, then left to right. TeX output
// encodes word gaps as TJ positioning offsets rather than space characters,
// so spaces are restored from the geometry.
func glyphLines(page pdf.Page) (lines []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			lines, ok = nil, false
		}
	}()

	glyphs := page.Content().Text
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	for start := 0; start < len(glyphs); {
		end := start + 1
		for end < len(glyphs) && glyphs[start].Y-glyphs[end].Y <= lineTolerance {
			end++
		}
		if line := joinGlyphs(glyphs[start:end]); line != "" {
			lines = append(lines, line)
		}
		start = end
	}
	return lines, true
}

func joinGlyphs(glyphs []pdf.Text) string {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 && wordGap(glyphs[i-1], g) {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func wordGap(prev, next pdf.Text) bool {
	if strings.TrimSpace(prev.S) == "" || strings.TrimSpace(next.S) == "" {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return gap > max(wordGapRatio*math.Abs(next.FontSize), minWordGap)
}

// PageCount reports the page count from the document structure, independent
// of text extraction.
func PageCount(raw []byte) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(raw), conf)
	if err != nil {
		return 0, domain.WrapError(domain.ErrExtraction, "count pages", err)
	}
	return n, nil
}
