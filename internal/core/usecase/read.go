package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

type SubmissionQueryUseCase struct {
	repo ports.SubmissionRepository
}

func NewSubmissionQueryUseCase(repo ports.SubmissionRepository) *SubmissionQueryUseCase {
	return &SubmissionQueryUseCase{repo: repo}
}

func (uc *SubmissionQueryUseCase) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	sub, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// List returns the newest submissions first. Non-positive limits fall back to
// the default; large ones are capped.
func (uc *SubmissionQueryUseCase) List(ctx context.Context, limit int) ([]domain.Submission, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	subs, err := uc.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}
