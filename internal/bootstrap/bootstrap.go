package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/papercheck/internal/config"
	"github.com/kirillkom/papercheck/internal/core/checker"
	"github.com/kirillkom/papercheck/internal/core/ports"
	"github.com/kirillkom/papercheck/internal/core/usecase"
	"github.com/kirillkom/papercheck/internal/infrastructure/extractor/pdftext"
	smtpmailer "github.com/kirillkom/papercheck/internal/infrastructure/mailer/smtp"
	"github.com/kirillkom/papercheck/internal/infrastructure/openreview"
	"github.com/kirillkom/papercheck/internal/infrastructure/queue/nats"
	"github.com/kirillkom/papercheck/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/papercheck/internal/infrastructure/resilience"
	"github.com/kirillkom/papercheck/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.SubmissionRepository
	SubmitUC  ports.SubmissionIngestor
	ProcessUC *usecase.ProcessSubmissionUseCase
	QueryUC   ports.SubmissionReader

	closeFn func()
}

// New wires the asynchronous pipeline shared by the API and the worker.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSubmissionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	storedChecker := NewChecker(cfg, storage, nil)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		SubmitUC:  usecase.NewSubmitUseCase(repo, storage, queue),
		ProcessUC: usecase.NewProcessSubmissionUseCase(repo, storedChecker),
		QueryUC:   usecase.NewSubmissionQueryUseCase(repo),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// NewChecker builds the document checker. A nil source reads handles as
// filesystem paths.
func NewChecker(cfg config.Config, source pdftext.Source, progress ports.ProgressReporter) *usecase.CheckUseCase {
	opts := pdftext.Options{Preflight: cfg.PreflightPDF, MaxBytes: cfg.UploadMaxBytes}
	var extractor *pdftext.Extractor
	if source == nil {
		extractor = pdftext.NewFileExtractor(opts)
	} else {
		extractor = pdftext.NewExtractor(source, opts)
	}

	matcher := checker.NewSectionMatcher()
	classifier := checker.NewContentPageClassifier(matcher, cfg.Classifier)
	return usecase.NewCheckUseCase(extractor, classifier, checker.DefaultDetectors(matcher), progress)
}

// NewReviews wires the OpenReview client and the SMTP mailer.
func NewReviews(cfg config.Config) (*usecase.ReviewsUseCase, error) {
	client, err := openreview.New(openreview.Options{
		BaseURL:            cfg.OpenReviewBaseURL,
		Username:           cfg.OpenReviewUsername,
		Password:           cfg.OpenReviewPassword,
		Timeout:            time.Duration(cfg.OpenReviewTimeoutSeconds) * time.Second,
		RequestsPerSecond:  cfg.OpenReviewRPS,
		ResilienceExecutor: resilience.NewExecutor(resilience.ReviewAPIConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init openreview client: %w", err)
	}

	sender := cfg.SMTPUsername
	if sender == "" {
		sender = cfg.OpenReviewUsername
	}
	mailer := smtpmailer.New(smtpmailer.Options{
		From:     sender,
		Password: cfg.SMTPPassword,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
	})

	return usecase.NewReviewsUseCase(client, mailer, usecase.ReminderConfig{
		Signature:  cfg.ReminderSignature,
		MinReviews: cfg.ReminderMinReviews,
	}), nil
}
