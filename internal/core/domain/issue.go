package domain

import (
	"encoding/json"
	"sort"
)

type IssueKind string

const (
	IssuePageLimit             IssueKind = "page_limit"
	IssueMissingLimitations    IssueKind = "missing_limitations"
	IssueAnonymization         IssueKind = "anonymization"
	IssueBrokenReferences      IssueKind = "broken_references"
	IssueEthicalConsiderations IssueKind = "ethical_considerations"
)

var issueCodes = map[IssueKind]string{
	IssuePageLimit:             "LEN",
	IssueMissingLimitations:    "LIM",
	IssueAnonymization:         "ANO",
	IssueBrokenReferences:      "REF",
	IssueEthicalConsiderations: "ETH",
}

// Code is the three-letter tag used in compact result tables.
func (k IssueKind) Code() string {
	if code, ok := issueCodes[k]; ok {
		return code
	}
	return "UNK"
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Issue struct {
	Kind     IssueKind `json:"issue_type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Details  string    `json:"details,omitempty"`
}

func (i Issue) Code() string {
	return i.Kind.Code()
}

type ResultStatus string

const (
	ResultPass ResultStatus = "PASS"
	ResultWarn ResultStatus = "WARN"
	ResultFail ResultStatus = "FAIL"
)

// CheckResult is the outcome of checking one document. It is built once by the
// checker and treated as read-only afterwards.
type CheckResult struct {
	Document     string    `json:"file_path"`
	PaperType    PaperType `json:"paper_type"`
	TotalPages   int       `json:"total_pages"`
	ContentPages int       `json:"content_pages"`
	Issues       []Issue   `json:"issues"`
}

func (r CheckResult) HasErrors() bool {
	return r.hasSeverity(SeverityError)
}

func (r CheckResult) HasWarnings() bool {
	return r.hasSeverity(SeverityWarning)
}

func (r CheckResult) Status() ResultStatus {
	switch {
	case r.HasErrors():
		return ResultFail
	case r.HasWarnings():
		return ResultWarn
	default:
		return ResultPass
	}
}

// Codes returns the sorted, de-duplicated issue codes of the given severity.
func (r CheckResult) Codes(severity Severity) []string {
	seen := make(map[string]struct{})
	for _, issue := range r.Issues {
		if issue.Severity != severity {
			continue
		}
		seen[issue.Code()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Count returns how many issues carry the given severity.
func (r CheckResult) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

func (r CheckResult) hasSeverity(severity Severity) bool {
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			return true
		}
	}
	return false
}

// MarshalJSON adds the derived has_errors and has_warnings flags.
func (r CheckResult) MarshalJSON() ([]byte, error) {
	type plain CheckResult
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	p := plain(r)
	p.Issues = issues
	return json.Marshal(struct {
		plain
		HasErrors   bool `json:"has_errors"`
		HasWarnings bool `json:"has_warnings"`
	}{
		plain:       p,
		HasErrors:   r.HasErrors(),
		HasWarnings: r.HasWarnings(),
	})
}
