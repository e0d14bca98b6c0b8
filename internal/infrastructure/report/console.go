package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

// Console renders results for a terminal: one panel per document with
// errors or warnings, then a summary table.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Write(results []domain.CheckResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(c.out, "No results to display")
		return err
	}
	for _, r := range results {
		if err := c.writePanel(r); err != nil {
			return err
		}
	}
	return c.writeSummary(results)
}

func (c *Console) writePanel(r domain.CheckResult) error {
	var b strings.Builder
	for _, issue := range r.Issues {
		var marker string
		switch issue.Severity {
		case domain.SeverityError:
			marker = "[x]"
		case domain.SeverityWarning:
			marker = "[!]"
		default:
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", marker, issue.Message)
		if issue.Details != "" {
			fmt.Fprintf(&b, "      %s\n", issue.Details)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	_, err := fmt.Fprintf(c.out, "\nIssues in %s\n%s", filepath.Base(r.Document), b.String())
	return err
}

func (c *Console) writeSummary(results []domain.CheckResult) error {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "PDF Check Summary")
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tTYPE\tPAGES\tCONTENT PAGES\tSTATUS\tISSUES")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			filepath.Base(r.Document), r.PaperType, r.TotalPages, r.ContentPages, r.Status(), issueCodes(r))
	}
	return tw.Flush()
}

// issueCodes formats error codes then warning codes, e.g. "LEN,LIM ANO".
func issueCodes(r domain.CheckResult) string {
	parts := make([]string, 0, 2)
	if codes := r.Codes(domain.SeverityError); len(codes) > 0 {
		parts = append(parts, strings.Join(codes, ","))
	}
	if codes := r.Codes(domain.SeverityWarning); len(codes) > 0 {
		parts = append(parts, strings.Join(codes, ","))
	}
	if len(parts) == 0 {
		return "ok"
	}
	return strings.Join(parts, " ")
}
