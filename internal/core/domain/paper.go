package domain

import (
	"fmt"
	"strings"
)

type PaperType string

const (
	PaperShort PaperType = "short"
	PaperLong  PaperType = "long"
)

// PageLimit is the number of content pages a submission of this type may use.
func (t PaperType) PageLimit() int {
	if t == PaperShort {
		return 4
	}
	return 8
}

// Description is the human wording used in issue messages.
func (t PaperType) Description() string {
	if t == PaperShort {
		return "short paper"
	}
	return "long paper"
}

func ParsePaperType(raw string) (PaperType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PaperShort):
		return PaperShort, nil
	case string(PaperLong):
		return PaperLong, nil
	default:
		return "", WrapError(ErrInvalidInput, "parse paper type", fmt.Errorf("unknown paper type %q", raw))
	}
}

// Page is one extracted page of a document. Index is 0-based.
type Page struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func PagesFromText(texts []string) []Page {
	pages := make([]Page, len(texts))
	for i, text := range texts {
		pages[i] = Page{Index: i, Text: text}
	}
	return pages
}
