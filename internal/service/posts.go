package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/pkg/log"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

// CreatePost создаёт пост от имени автора.
// После записи лента автора в кэше инвалидируется best-effort: при
// недоступном кэше стейл-лента доживёт не дольше своего TTL.
func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, content string) (*models.Post, error) {
	const op = "service.posts.CreatePost"

	lg := log.From(ctx)

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyContent)
	}

	if int64(len(content)) > s.cfg.Posts.MaxContentBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrPostTooLarge)
	}

	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.storage.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.InvalidatePosts(ctx, authorID); err != nil {
		lg.Warn("posts_cache_invalidate_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return post, nil
}

// PostsByAuthor возвращает посты автора, новые первыми.
//
// Read-through той же политики, что и резолв пользователя: кэш → БД,
// отказ кэша — fail-open. Пустая лента кэшируется наравне с непустой.
func (s *Service) PostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Post, error) {
	const op = "service.posts.PostsByAuthor"

	lg := log.From(ctx)

	cacheUp := true
	cached, hit, err := s.cache.Posts(ctx, authorID)
	if err != nil {
		lg.Warn("posts_cache_unavailable",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		cacheUp = false
	} else if hit {
		return cached, nil
	}

	posts, err := s.storage.PostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cacheUp {
		if err := s.cache.SetPosts(ctx, authorID, posts, s.cfg.Cache.PostsTTL); err != nil {
			lg.Warn("posts_cache_set_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return posts, nil
}

// DeletePost удаляет пост автора. Владение проверяется на уровне запроса:
// чужой пост неотличим от несуществующего (ErrPostNotFound).
func (s *Service) DeletePost(ctx context.Context, postID, authorID uuid.UUID) error {
	const op = "service.posts.DeletePost"

	lg := log.From(ctx)

	if err := s.storage.DeletePost(ctx, postID, authorID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.InvalidatePosts(ctx, authorID); err != nil {
		lg.Warn("posts_cache_invalidate_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return nil
}
