package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

type submitRepoFake struct {
	created *domain.Submission
	err     error
}

func (f *submitRepoFake) Create(_ context.Context, sub *domain.Submission) error {
	if f.err != nil {
		return f.err
	}
	copySub := *sub
	f.created = &copySub
	return nil
}

func (f *submitRepoFake) GetByID(context.Context, string) (*domain.Submission, error) {
	return nil, errors.New("not implemented")
}
func (f *submitRepoFake) List(context.Context, int) ([]domain.Submission, error) {
	return nil, errors.New("not implemented")
}
func (f *submitRepoFake) UpdateStatus(context.Context, string, domain.SubmissionStatus, string) error {
	return errors.New("not implemented")
}
func (f *submitRepoFake) SaveResult(context.Context, string, domain.CheckResult) error {
	return errors.New("not implemented")
}

type storageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type queueFake struct {
	submissionID string
	err          error
}

func (f *queueFake) PublishSubmissionReceived(_ context.Context, submissionID string) error {
	if f.err != nil {
		return f.err
	}
	f.submissionID = submissionID
	return nil
}

func (f *queueFake) SubscribeSubmissionReceived(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestSubmitUploadSuccess(t *testing.T) {
	repo := &submitRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewSubmitUseCase(repo, storage, queue)

	sub, err := uc.Upload(context.Background(), "my paper.pdf", domain.PaperLong, bytes.NewBufferString("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if sub.ID == "" {
		t.Fatalf("expected submission id")
	}
	if sub.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %s", sub.Status)
	}
	if sub.PaperType != domain.PaperLong {
		t.Fatalf("expected paper type long, got %s", sub.PaperType)
	}
	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if queue.submissionID != sub.ID {
		t.Fatalf("expected queued id %s, got %s", sub.ID, queue.submissionID)
	}
	if !strings.HasSuffix(storage.savedKey, "_my_paper.pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if storage.savedBody != "%PDF-1.4" {
		t.Fatalf("unexpected saved body %q", storage.savedBody)
	}
}

func TestSubmitUploadRejectsUnknownPaperType(t *testing.T) {
	for _, paperType := range []domain.PaperType{"poster", "bogus", ""} {
		repo, storage := &submitRepoFake{}, &storageFake{}
		uc := NewSubmitUseCase(repo, storage, &queueFake{})

		_, err := uc.Upload(context.Background(), "a.pdf", paperType, bytes.NewBufferString("x"))
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Upload(type=%q) expected invalid input, got %v", paperType, err)
		}
		if storage.savedKey != "" || repo.created != nil {
			t.Fatalf("Upload(type=%q) should not store anything", paperType)
		}
	}
}

func TestSubmitUploadNormalizesPaperType(t *testing.T) {
	repo := &submitRepoFake{}
	uc := NewSubmitUseCase(repo, &storageFake{}, &queueFake{})

	sub, err := uc.Upload(context.Background(), "a.pdf", domain.PaperType(" Short "), bytes.NewBufferString("x"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if sub.PaperType != domain.PaperShort || repo.created.PaperType != domain.PaperShort {
		t.Fatalf("expected stored paper type short, got %q", sub.PaperType)
	}
}

func TestSubmitUploadQueueError(t *testing.T) {
	uc := NewSubmitUseCase(&submitRepoFake{}, &storageFake{}, &queueFake{err: errors.New("queue down")})

	_, err := uc.Upload(context.Background(), "a.pdf", domain.PaperShort, bytes.NewBufferString("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish submission event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestSubmitUploadStorageErrorSkipsRepo(t *testing.T) {
	repo := &submitRepoFake{}
	uc := NewSubmitUseCase(repo, &storageFake{err: errors.New("disk full")}, &queueFake{})

	if _, err := uc.Upload(context.Background(), "a.pdf", domain.PaperShort, bytes.NewBufferString("x")); err == nil {
		t.Fatalf("expected error")
	}
	if repo.created != nil {
		t.Fatalf("repo must not be touched when storage fails")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "paper.pdf", want: "paper.pdf"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\me\draft.pdf`, want: "draft.pdf"},
		{in: "résumé v2.pdf", want: "r_sum__v2.pdf"},
		{in: "", want: "submission.pdf"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
