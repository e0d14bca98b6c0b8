package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

const markFailedTimeout = 5 * time.Second

// ProcessSubmissionUseCase checks a stored submission. The checker it is
// given must resolve storage keys, not filesystem paths.
type ProcessSubmissionUseCase struct {
	repo     ports.SubmissionRepository
	checker  ports.SubmissionChecker
	observer ports.ProcessObserver
}

func NewProcessSubmissionUseCase(
	repo ports.SubmissionRepository,
	checker ports.SubmissionChecker,
) *ProcessSubmissionUseCase {
	return &ProcessSubmissionUseCase{
		repo:    repo,
		checker: checker,
	}
}

// WithObserver registers an observer for started and finished checks.
func (uc *ProcessSubmissionUseCase) WithObserver(observer ports.ProcessObserver) *ProcessSubmissionUseCase {
	uc.observer = observer
	return uc
}

func (uc *ProcessSubmissionUseCase) ProcessByID(ctx context.Context, submissionID string) error {
	if err := uc.markStatus(ctx, submissionID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.check(ctx, submissionID)
	if err != nil {
		if failErr := uc.markFailed(ctx, submissionID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveResult(ctx, submissionID, result); err != nil {
		err = fmt.Errorf("save result: %w", err)
		if failErr := uc.markFailed(ctx, submissionID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, submissionID, domain.StatusChecked, ""); err != nil {
		return fmt.Errorf("set status=checked: %w", err)
	}
	if uc.observer != nil {
		uc.observer.CheckFinished(result)
	}
	return nil
}

func (uc *ProcessSubmissionUseCase) check(ctx context.Context, submissionID string) (domain.CheckResult, error) {
	sub, err := uc.repo.GetByID(ctx, submissionID)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("fetch submission by id: %w", err)
	}
	if uc.observer != nil {
		uc.observer.CheckStarted(*sub)
	}

	result := uc.checker.CheckDocument(ctx, sub.StoragePath, sub.PaperType)
	if err := ctx.Err(); err != nil {
		return domain.CheckResult{}, domain.WrapError(domain.ErrTemporary, "check submission", err)
	}
	result.Document = sub.Filename
	return result, nil
}

func (uc *ProcessSubmissionUseCase) markStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, submissionID, status, errMessage)
}

func (uc *ProcessSubmissionUseCase) markFailed(ctx context.Context, submissionID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	// The failure must be recorded even when ctx is what failed.
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markFailedTimeout)
	defer cancel()
	return uc.markStatus(markCtx, submissionID, domain.StatusFailed, processErr.Error())
}
