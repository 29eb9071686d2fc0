package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/domain/siteconfig"
)

func TestSiteConfigRepo_UpsertAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (key) DO UPDATE`)).
		WithArgs("home.banner", "hola", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM site_config WHERE key = $1`)).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSiteConfigRepo(db)
	require.NoError(t, repo.Upsert(context.Background(), siteconfig.Entry{Key: "home.banner", Value: "hola", UpdatedAt: at}))
	assert.ErrorIs(t, repo.Delete(context.Background(), "ghost"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
