package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/domain/users"
	"kennel-exchange/internal/ports/auth"
)

func TestUsersRepo_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE lower(email) = lower($1)`)).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "display_name", "password_hash", "role", "newsletter_opt_in", "created_at", "updated_at",
		}).AddRow("u1", "ana@example.com", "Ana", "hash", "breeder", true, now, now))

	repo := NewUsersRepo(db)
	u, err := repo.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleBreeder, u.Role)
	assert.True(t, u.NewsletterOptIn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewUsersRepo(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersRepo_Update_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewUsersRepo(db).Update(context.Background(), users.User{ID: "ghost", Role: auth.RoleUser})
	assert.ErrorIs(t, err, ErrNotFound)
}
