package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"plagcheck/internal/model"
	"plagcheck/internal/repository"
)

// ReportPostgres is the PostgreSQL implementation of repository.ReportRepository.
// Per-file results are kept in a JSONB column.
type ReportPostgres struct {
	db *sql.DB
}

func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

func (r *ReportPostgres) Create(ctx context.Context, rep *model.Report) (*model.Report, error) {
	files, err := json.Marshal(rep.Files)
	if err != nil {
		return nil, fmt.Errorf("encode files: %w", err)
	}

	const q = `
		INSERT INTO reports (id, main_document, storage_prefix, average_percentage, file_count, files, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, main_document, storage_prefix, average_percentage, file_count, files, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		rep.ID,
		rep.MainDocument,
		rep.StoragePrefix,
		rep.AveragePercentage,
		rep.FileCount,
		files,
		rep.CreatedAt,
	)
	return scanReport(row)
}

func (r *ReportPostgres) FindByID(ctx context.Context, id string) (*model.Report, error) {
	const q = `
		SELECT id, main_document, storage_prefix, average_percentage, file_count, files, created_at
		FROM reports
		WHERE id = $1
	`
	out, err := scanReport(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return out, err
}

func (r *ReportPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, main_document, storage_prefix, average_percentage, file_count, created_at
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		var rep model.Report
		if err := rows.Scan(
			&rep.ID,
			&rep.MainDocument,
			&rep.StoragePrefix,
			&rep.AveragePercentage,
			&rep.FileCount,
			&rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Report]{Items: items, Total: total}, nil
}

func (r *ReportPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanReport(row *sql.Row) (*model.Report, error) {
	var (
		out   model.Report
		files []byte
	)
	if err := row.Scan(
		&out.ID,
		&out.MainDocument,
		&out.StoragePrefix,
		&out.AveragePercentage,
		&out.FileCount,
		&files,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(files, &out.Files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return &out, nil
}
