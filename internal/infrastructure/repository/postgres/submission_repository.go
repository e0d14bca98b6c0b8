package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

const schemaLockID int64 = 2026101901

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	paper_type TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	result JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO submissions (
	id, filename, storage_path, paper_type, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		sub.ID, sub.Filename, sub.StoragePath, string(sub.PaperType), string(sub.Status), sub.Error,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

const selectSubmission = `
SELECT id, filename, storage_path, paper_type, status, error_message, result, created_at, updated_at
FROM submissions
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var sub domain.Submission
	var paperType, status string
	var resultRaw []byte

	if err := row.Scan(
		&sub.ID, &sub.Filename, &sub.StoragePath, &paperType, &status, &sub.Error,
		&resultRaw, &sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return nil, err
	}

	sub.PaperType = domain.PaperType(paperType)
	sub.Status = domain.SubmissionStatus(status)
	if len(resultRaw) > 0 {
		var result domain.CheckResult
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		sub.Result = &result
	}
	return &sub, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	row := r.db.QueryRowContext(ctx, selectSubmission+`WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSubmissionNotFound, "get submission", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	return sub, nil
}

func (r *SubmissionRepository) List(ctx context.Context, limit int) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, selectSubmission+`ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0, limit)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	return requireRow(res, "update submission status", id)
}

func (r *SubmissionRepository) SaveResult(ctx context.Context, id string, result domain.CheckResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET result = $2, updated_at = $3
WHERE id = $1
`, id, resultJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return requireRow(res, "save result", id)
}

func requireRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.WrapError(domain.ErrSubmissionNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
