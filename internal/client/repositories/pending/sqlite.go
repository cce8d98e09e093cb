package pending

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/dbx"
)

const table = "pending_approvals"

var columns = []string{"document_id", "version_id", "signature_id", "last_error", "attempts", "created_at", "updated_at"}

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *SQLiteRepository) Save(ctx context.Context, a Approval) error {
	if err := common.RequireIDs(a.DocumentID, a.SignatureID); err != nil {
		return err
	}

	ts := r.now()
	q := dbx.Builder.Insert(table).
		Columns(columns...).
		Values(a.DocumentID, a.VersionID, a.SignatureID, a.LastError, 1, ts, ts).
		Suffix(`ON CONFLICT(document_id) DO UPDATE SET
  version_id = excluded.version_id,
  signature_id = excluded.signature_id,
  last_error = excluded.last_error,
  attempts = pending_approvals.attempts + 1,
  updated_at = excluded.updated_at`)

	if _, err := dbx.Exec(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to save pending approval[%s]: %w", a.DocumentID, err)
	}
	return nil
}

// Get returns common.ErrNotFound when nothing is pending for the document.
func (r *SQLiteRepository) Get(ctx context.Context, documentID string) (*Approval, error) {
	query, args, err := dbx.Builder.Select(columns...).From(table).Where(sq.Eq{"document_id": documentID}).ToSql()
	if err != nil {
		return nil, err
	}

	a, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending approval[%s]: %w", documentID, err)
	}
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Approval, error) {
	rows, err := dbx.Query(ctx, r.db, dbx.Builder.Select(columns...).From(table).OrderBy("created_at", "document_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	defer rows.Close()

	var result []Approval
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending approval: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending approvals: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, documentID string) error {
	if _, err := dbx.Exec(ctx, r.db, dbx.Builder.Delete(table).Where(sq.Eq{"document_id": documentID})); err != nil {
		return fmt.Errorf("failed to delete pending approval[%s]: %w", documentID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*Approval, error) {
	var a Approval
	if err := s.Scan(&a.DocumentID, &a.VersionID, &a.SignatureID, &a.LastError, &a.Attempts, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
