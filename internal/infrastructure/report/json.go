package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

// WriteJSONFile saves results as an indented JSON array.
func WriteJSONFile(path string, results []domain.CheckResult) error {
	if results == nil {
		results = []domain.CheckResult{}
	}
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write results %s: %w", path, err)
	}
	return nil
}
