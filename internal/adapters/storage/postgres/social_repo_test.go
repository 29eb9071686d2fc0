package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/domain/social"
)

func TestSocialRepo_List_FiltersAndVisibility(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	created := from.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`author_user_id = ANY($2)`) + `.*` +
		regexp.QuoteMeta(`AND created_at >= $3 AND body ILIKE $4 ORDER BY created_at DESC LIMIT $5`)).
		WithArgs("ana", sqlmock.AnyArg(), from, "%luna%", 200).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "author_user_id", "body", "image_url", "visibility", "status", "created_at", "removed_at",
		}).AddRow("s1", "bob", "Luna at the beach", "", "friends", "active", created, nil))

	out, err := NewSocialRepo(db).List(context.Background(), social.ListFilter{
		ViewerUserID: "ana",
		FriendIDs:    []string{"bob"},
		From:         &from,
		Query:        " luna ",
		Limit:        1000,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, social.VisibilityFriends, out[0].Visibility)
	assert.Nil(t, out[0].RemovedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialRepo_Remove_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE social_posts SET status = 'removed'`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewSocialRepo(db).Remove(context.Background(), "ghost", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
