package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

var submissionColumns = []string{
	"id", "filename", "storage_path", "paper_type", "status", "error_message", "result", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*SubmissionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SubmissionRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCreateInsertsSubmission(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO submissions").
		WithArgs("sub-1", "paper.pdf", "sub-1_paper.pdf", "short", "uploaded", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Submission{
		ID:          "sub-1",
		Filename:    "paper.pdf",
		StoragePath: "sub-1_paper.pdf",
		PaperType:   domain.PaperShort,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDDecodesResult(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	result := domain.CheckResult{
		Document:     "paper.pdf",
		PaperType:    domain.PaperLong,
		TotalPages:   11,
		ContentPages: 9,
		Issues: []domain.Issue{{
			Kind:     domain.IssuePageLimit,
			Severity: domain.SeverityError,
			Message:  "Paper exceeds page limit for long paper",
		}},
	}
	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, filename, storage_path").
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows(submissionColumns).
			AddRow("sub-1", "paper.pdf", "k", "long", "checked", "", raw, now, now))

	sub, err := repo.GetByID(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sub.Status != domain.StatusChecked || sub.PaperType != domain.PaperLong {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.Result == nil || sub.Result.ContentPages != 9 || !sub.Result.HasErrors() {
		t.Fatalf("unexpected result %+v", sub.Result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, storage_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListOrdersByNewest(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("ORDER BY created_at DESC LIMIT").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(submissionColumns).
			AddRow("b", "b.pdf", "kb", "short", "processing", "", nil, now, now).
			AddRow("a", "a.pdf", "ka", "short", "failed", "boom", nil, now.Add(-time.Minute), now))

	subs, err := repo.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(subs) != 2 || subs[0].ID != "b" || subs[1].Error != "boom" {
		t.Fatalf("unexpected submissions %+v", subs)
	}
	if subs[0].Result != nil {
		t.Fatalf("expected no result for unchecked submission")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE submissions").
		WithArgs("missing", string(domain.StatusProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusProcessing, "")
	if !domain.IsKind(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveResultStoresJSON(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE submissions").
		WithArgs("sub-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveResult(context.Background(), "sub-1", domain.CheckResult{Document: "p.pdf"}); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(schemaLockID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS submissions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
