package domain

import "time"

type SubmissionStatus string

const (
	StatusUploaded   SubmissionStatus = "uploaded"
	StatusProcessing SubmissionStatus = "processing"
	StatusChecked    SubmissionStatus = "checked"
	StatusFailed     SubmissionStatus = "failed"
)

type Submission struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	StoragePath string           `json:"storage_path"`
	PaperType   PaperType        `json:"paper_type"`
	Status      SubmissionStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
	Result      *CheckResult     `json:"result,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
