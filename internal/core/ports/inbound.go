package ports

import (
	"context"
	"io"
	"iter"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

// SubmissionChecker is the inbound contract for checking PDFs on disk.
type SubmissionChecker interface {
	CheckDocument(ctx context.Context, path string, paperType domain.PaperType) domain.CheckResult
	CheckCollection(ctx context.Context, paths []string, paperType domain.PaperType) iter.Seq[domain.CheckResult]
}

// SubmissionIngestor accepts uploads for asynchronous checking.
type SubmissionIngestor interface {
	Upload(ctx context.Context, filename string, paperType domain.PaperType, body io.Reader) (*domain.Submission, error)
}

// SubmissionReader is the read model for submission state and results.
type SubmissionReader interface {
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	List(ctx context.Context, limit int) ([]domain.Submission, error)
}

// SubmissionProcessor checks a stored submission.
type SubmissionProcessor interface {
	ProcessByID(ctx context.Context, submissionID string) error
}

// ReviewTracker finds missing reviews for an area chair and chases them.
type ReviewTracker interface {
	AreaChairVenues(ctx context.Context, userID string) ([]domain.Venue, error)
	Assignments(ctx context.Context, venueID, userID string) ([]string, error)
	PaperInfo(ctx context.Context, paperIDs []string) ([]domain.AssignedPaper, error)
	MissingReviews(ctx context.Context, venueID string, paperIDs []string) ([]domain.MissingReview, error)
	PostAreaChairComments(ctx context.Context, venueID, userID, text string, papers []domain.AssignedPaper) []domain.CommentOutcome
	SendReminders(ctx context.Context, entries []domain.MissingReview, testRecipient string) []domain.ReminderOutcome
}
