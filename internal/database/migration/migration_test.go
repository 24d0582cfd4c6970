package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEnsureMigrated(t *testing.T) {
	sentinel := regexp.QuoteMeta(sentinelQuery)

	tests := []struct {
		name       string
		setupMocks func(mock sqlmock.Sqlmock)
		wantErr    bool
		wantEvent  string
	}{
		{
			name: "schema exists",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantEvent: "db_migration_skip",
		},
		{
			name: "runs every step",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				for _, s := range steps {
					mock.ExpectExec(regexp.QuoteMeta(s.sql)).WillReturnResult(sqlmock.NewResult(0, 0))
				}
			},
			wantEvent: "db_migration_success",
		},
		{
			name: "sentinel query fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(sentinel).WillReturnError(errors.New("connection refused"))
			},
			wantErr:   true,
			wantEvent: "db_migration_failed",
		},
		{
			name: "step fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(regexp.QuoteMeta(steps[0].sql)).WillReturnError(errors.New("permission denied"))
			},
			wantErr:   true,
			wantEvent: "db_migration_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMocks(mock)

			core, logs := observer.New(zapcore.InfoLevel)
			err = EnsureMigrated(context.Background(), db, zap.New(core), "localhost")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, logs.FilterMessage(tt.wantEvent).Len())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
