package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kirillkom/papercheck/internal/bootstrap"
	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
	"github.com/kirillkom/papercheck/internal/infrastructure/report"
	"github.com/kirillkom/papercheck/internal/observability/logging"
)

func runCheckPDF(ctx context.Context, env *environment, args []string) (int, error) {
	fs := flag.NewFlagSet("check-pdf", flag.ContinueOnError)
	paperTypeRaw := fs.String("type", env.cfg.DefaultPaperType, "paper type: short (4 pages) or long (8 pages)")
	jsonOut := fs.String("o", "", "write results to this JSON file")
	xlsxOut := fs.String("xlsx", "", "write results to this XLSX workbook")
	quiet := fs.Bool("q", false, "print only a one-line summary")
	verbose := fs.Bool("v", false, "debug logging")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitInvocation, err
	}
	if len(positional) != 1 {
		return exitInvocation, usagef("check-pdf takes exactly one PATH")
	}
	path := positional[0]

	paperType, err := domain.ParsePaperType(*paperTypeRaw)
	if err != nil {
		return exitInvocation, usagef("invalid -type %q: use short or long", *paperTypeRaw)
	}
	if *verbose {
		logging.NewConsoleLogger(env.stderr, "debug")
	}

	var progress ports.ProgressReporter
	if !*quiet {
		progress = report.NewProgress(env.stderr)
	}
	checker := bootstrap.NewChecker(env.cfg, nil, progress)

	info, err := os.Stat(path)
	if err != nil {
		return exitInvocation, fmt.Errorf("path %s does not exist", path)
	}

	var results []domain.CheckResult
	if info.IsDir() {
		if !*quiet {
			fmt.Fprintf(env.stdout, "Checking directory: %s\n", path)
		}
		results = slices.Collect(checker.CheckDirectory(ctx, path, paperType))
	} else {
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return exitInvocation, errors.New("file must be a PDF")
		}
		if !*quiet {
			fmt.Fprintf(env.stdout, "Checking PDF: %s\n", path)
		}
		results = slices.Collect(checker.CheckCollection(ctx, []string{path}, paperType))
	}

	if len(results) == 0 {
		fmt.Fprintln(env.stdout, "No PDF files processed")
		return exitOK, nil
	}

	if *quiet {
		writeOneLineSummary(env.stdout, results)
	} else if err := report.NewConsole(env.stdout).Write(results); err != nil {
		return exitInternal, fmt.Errorf("print results: %w", err)
	}

	if *jsonOut != "" {
		if err := report.WriteJSONFile(*jsonOut, results); err != nil {
			return exitInternal, err
		}
		if !*quiet {
			fmt.Fprintf(env.stdout, "Results saved to %s\n", *jsonOut)
		}
	}
	if *xlsxOut != "" {
		if err := writeWorkbook(*xlsxOut, results); err != nil {
			return exitInternal, err
		}
		if !*quiet {
			fmt.Fprintf(env.stdout, "Workbook saved to %s\n", *xlsxOut)
		}
	}

	if slices.ContainsFunc(results, domain.CheckResult.HasErrors) {
		return exitHasErrors, nil
	}
	return exitOK, nil
}

func writeOneLineSummary(w io.Writer, results []domain.CheckResult) {
	withErrors, withWarnings := 0, 0
	for _, r := range results {
		switch {
		case r.HasErrors():
			withErrors++
		case r.HasWarnings():
			withWarnings++
		}
	}
	fmt.Fprintf(w, "%d checked, %d with errors, %d with warnings\n", len(results), withErrors, withWarnings)
}

func writeWorkbook(path string, results []domain.CheckResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", closeErr)
		}
	}()
	return report.WriteXLSX(f, results)
}
