package ports

import (
	"context"
	"io"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

// PageExtractor returns the plain text of every page of a document, in
// reading order. Failures wrap domain.ErrExtraction.
type PageExtractor interface {
	ExtractPages(ctx context.Context, handle string) ([]string, error)
}

// SubmissionRepository persists and reads submission state.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	List(ctx context.Context, limit int) ([]domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, result domain.CheckResult) error
}

// ObjectStorage stores uploaded PDFs.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes submission events.
type MessageQueue interface {
	PublishSubmissionReceived(ctx context.Context, submissionID string) error
	SubscribeSubmissionReceived(ctx context.Context, handler func(context.Context, string) error) error
}

type GroupQuery struct {
	Member string
	Prefix string
}

type EdgeQuery struct {
	Invitation string
	Head       string
	Tail       string
}

// ReviewPlatform is the review-management service (OpenReview).
type ReviewPlatform interface {
	Groups(ctx context.Context, query GroupQuery) ([]domain.Group, error)
	Edges(ctx context.Context, query EdgeQuery) ([]domain.Edge, error)
	Note(ctx context.Context, id string) (*domain.Note, error)
	ForumNotes(ctx context.Context, forum string) ([]domain.Note, error)
	Profiles(ctx context.Context, ids []string, preferredEmailsInvitation string) ([]domain.Profile, error)
	Profile(ctx context.Context, id string) (*domain.Profile, error)
	PostNoteEdit(ctx context.Context, edit domain.NoteEdit) error
}

type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers reminder emails. Dial opens an authenticated session.
type Mailer interface {
	Dial(ctx context.Context) (MailSession, error)
}

type MailSession interface {
	Send(ctx context.Context, msg Email) error
	Close() error
}

// ProcessObserver is told when a stored submission starts checking and what
// the check produced.
type ProcessObserver interface {
	CheckStarted(sub domain.Submission)
	CheckFinished(result domain.CheckResult)
}
