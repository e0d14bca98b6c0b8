package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

const (
	summarySheet = "Summary"
	issuesSheet  = "Issues"
)

var (
	summaryHeader = []any{"File", "Type", "Pages", "Content Pages", "Status", "Errors", "Warnings"}
	issuesHeader  = []any{"File", "Code", "Severity", "Message", "Details"}
)

// WriteXLSX writes a workbook with a summary sheet and one row per issue.
func WriteXLSX(w io.Writer, results []domain.CheckResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return fmt.Errorf("create issues sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := writeHeader(f, summarySheet, summaryHeader, bold); err != nil {
		return err
	}
	if err := writeHeader(f, issuesSheet, issuesHeader, bold); err != nil {
		return err
	}

	issueRow := 2
	for i, r := range results {
		name := filepath.Base(r.Document)
		row := []any{
			name,
			string(r.PaperType),
			r.TotalPages,
			r.ContentPages,
			string(r.Status()),
			strings.Join(r.Codes(domain.SeverityError), ","),
			strings.Join(r.Codes(domain.SeverityWarning), ","),
		}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
		for _, issue := range r.Issues {
			row := []any{name, issue.Code(), string(issue.Severity), issue.Message, issue.Details}
			if err := setRow(f, issuesSheet, issueRow, row); err != nil {
				return err
			}
			issueRow++
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(issuesSheet, "D", "E", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
