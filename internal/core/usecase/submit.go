package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

type SubmitUseCase struct {
	repo    ports.SubmissionRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewSubmitUseCase(
	repo ports.SubmissionRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *SubmitUseCase {
	return &SubmitUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *SubmitUseCase) Upload(
	ctx context.Context,
	filename string,
	paperType domain.PaperType,
	body io.Reader,
) (*domain.Submission, error) {
	if body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload submission", fmt.Errorf("empty body"))
	}
	paperType, err := domain.ParsePaperType(string(paperType))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload submission", err)
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	sub := &domain.Submission{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		PaperType:   paperType,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if err := uc.queue.PublishSubmissionReceived(ctx, sub.ID); err != nil {
		return nil, fmt.Errorf("publish submission event: %w", err)
	}

	return sub, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "submission.pdf"
	}
	return base
}
