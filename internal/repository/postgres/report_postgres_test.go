package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plagcheck/internal/model"
	"plagcheck/internal/repository"
)

var reportColumns = []string{"id", "main_document", "storage_prefix", "average_percentage", "file_count", "files", "created_at"}

func sampleReport(now time.Time) *model.Report {
	return &model.Report{
		ID:                "rep-1",
		MainDocument:      "essay.txt",
		StoragePrefix:     "reports/rep-1/",
		AveragePercentage: 40,
		FileCount:         2,
		Files: []model.FileResult{
			{FileName: "a.txt", PlagiarismPercentage: model.Percent(80), Matches: []string{"The cat sat."}},
			{FileName: "b.png", Error: "ocr unavailable"},
		},
		CreatedAt: now,
	}
}

func TestReportPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReportPostgres(db)
	now := time.Now().UTC()
	rep := sampleReport(now)
	files, err := json.Marshal(rep.Files)
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO reports").
		WithArgs(rep.ID, rep.MainDocument, rep.StoragePrefix, rep.AveragePercentage, rep.FileCount, files, rep.CreatedAt).
		WillReturnRows(sqlmock.NewRows(reportColumns).
			AddRow(rep.ID, rep.MainDocument, rep.StoragePrefix, rep.AveragePercentage, rep.FileCount, files, rep.CreatedAt))

	got, err := repo.Create(context.Background(), rep)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	require.Len(t, got.Files, 2)
	assert.Equal(t, 80.0, got.Files[0].Percentage())
	assert.False(t, got.Files[1].HasPercentage())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportPostgres_FindByID(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mock sqlmock.Sqlmock)
		wantErr    error
		wantAny    bool
	}{
		{
			name: "found",
			id:   "rep-1",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = ?").
					WithArgs("rep-1").
					WillReturnRows(sqlmock.NewRows(reportColumns).
						AddRow("rep-1", "essay.txt", "reports/rep-1/", 12.5, 1, []byte(`[{"file_name":"a.txt","plagiarism_percentage":12.5}]`), now))
			},
		},
		{
			name: "not found",
			id:   "missing",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = ?").
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "corrupt files column",
			id:   "rep-2",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = ?").
					WithArgs("rep-2").
					WillReturnRows(sqlmock.NewRows(reportColumns).
						AddRow("rep-2", "essay.txt", "reports/rep-2/", 0, 0, []byte(`{`), now))
			},
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMocks(mock)

			got, err := NewReportPostgres(db).FindByID(context.Background(), tt.id)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantAny:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.id, got.ID)
				require.Len(t, got.Files, 1)
				assert.Equal(t, 12.5, got.Files[0].Percentage())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReportPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM reports ORDER BY created_at DESC").
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "main_document", "storage_prefix", "average_percentage", "file_count", "created_at"}).
			AddRow("r3", "c.txt", "reports/r3/", 10.0, 1, now).
			AddRow("r2", "b.txt", "reports/r2/", 55.5, 4, now.Add(-time.Minute)))

	got, err := NewReportPostgres(db).List(context.Background(), repository.PageQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "r3", got.Items[0].ID)
	assert.Equal(t, 4, got.Items[1].FileCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportPostgres_List_CountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").WillReturnError(errors.New("boom"))

	got, err := NewReportPostgres(db).List(context.Background(), repository.PageQuery{Limit: 10})
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportPostgres_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing", affected: 0, wantErr: repository.ErrNotFound},
		{name: "exec error", execErr: errors.New("boom"), wantErr: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectExec("DELETE FROM reports WHERE id = ?").WithArgs("rep-1")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			err = NewReportPostgres(db).Delete(context.Background(), "rep-1")
			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case errors.Is(tt.wantErr, repository.ErrNotFound):
				assert.ErrorIs(t, err, repository.ErrNotFound)
			default:
				assert.EqualError(t, err, tt.wantErr.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
