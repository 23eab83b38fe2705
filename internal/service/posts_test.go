package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

func TestCreatePost_OK_InvalidatesFeed(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	authorID := uuid.New()

	// Прогреем ленту, чтобы проверить инвалидацию.
	require.NoError(t, svc.cache.SetPosts(ctx, authorID, []models.Post{}, time.Minute))

	st.EXPECT().SavePost(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.Post) error {
			require.Equal(t, authorID, p.AuthorID)
			require.NotEqual(t, uuid.Nil, p.ID)
			return nil
		})

	post, err := svc.CreatePost(ctx, authorID, "hello, world")
	require.NoError(t, err)
	require.Equal(t, "hello, world", post.Content)

	_, hit, err := svc.cache.Posts(ctx, authorID)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCreatePost_EmptyOrOversized(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	authorID := uuid.New()

	_, err := svc.CreatePost(ctx, authorID, "   \n\t ")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmptyContent)

	svc.cfg.Posts.MaxContentBytes = 10
	_, err = svc.CreatePost(ctx, authorID, strings.Repeat("x", 11))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrPostTooLarge)
}

func TestCreatePost_StorageError_Propagated(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SavePost(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

	_, err := svc.CreatePost(context.Background(), uuid.New(), "hello")
	require.Error(t, err)
}

func TestCreatePost_CacheDown_StillSucceeds(t *testing.T) {
	t.Parallel()

	svc, st, mr, ctrl := newSvc(t)
	defer ctrl.Finish()

	mr.Close()

	st.EXPECT().SavePost(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.CreatePost(context.Background(), uuid.New(), "hello")
	require.NoError(t, err)
}

func TestPostsByAuthor_ReadThrough(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	authorID := uuid.New()
	posts := []models.Post{
		{ID: uuid.New(), AuthorID: authorID, Content: "second", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), AuthorID: authorID, Content: "first", CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}

	// БД дергается один раз, повтор идёт из кэша.
	st.EXPECT().PostsByAuthor(gomock.Any(), authorID).Return(posts, nil).Times(1)

	got, err := svc.PostsByAuthor(ctx, authorID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = svc.PostsByAuthor(ctx, authorID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "second", got[0].Content)
}

func TestPostsByAuthor_EmptyFeedCachedToo(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	authorID := uuid.New()

	st.EXPECT().PostsByAuthor(gomock.Any(), authorID).Return([]models.Post{}, nil).Times(1)

	got, err := svc.PostsByAuthor(ctx, authorID)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = svc.PostsByAuthor(ctx, authorID)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPostsByAuthor_CacheDown_FailsOpen(t *testing.T) {
	t.Parallel()

	svc, st, mr, ctrl := newSvc(t)
	defer ctrl.Finish()

	authorID := uuid.New()

	mr.Close()

	st.EXPECT().PostsByAuthor(gomock.Any(), authorID).
		Return([]models.Post{{ID: uuid.New(), AuthorID: authorID, Content: "p"}}, nil)

	got, err := svc.PostsByAuthor(context.Background(), authorID)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestDeletePost_OK_And_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	postID := uuid.New()
	authorID := uuid.New()

	st.EXPECT().DeletePost(gomock.Any(), postID, authorID).Return(nil)
	require.NoError(t, svc.DeletePost(ctx, postID, authorID))

	// Чужой или несуществующий пост - одинаковый ответ.
	st.EXPECT().DeletePost(gomock.Any(), postID, authorID).Return(storage.ErrNotFound)
	err := svc.DeletePost(ctx, postID, authorID)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePost_StorageError_Propagated(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().DeletePost(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("db down"))

	err := svc.DeletePost(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPostNotFound)
}
