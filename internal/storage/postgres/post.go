package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

// SavePost сохраняет новый пост.
func (s *Storage) SavePost(ctx context.Context, post *models.Post) error {
	const op = "storage.postgres.SavePost"

	query := `
		INSERT INTO posts(id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.Exec(ctx, query,
		post.ID,
		post.AuthorID,
		post.Content,
		post.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PostsByAuthor возвращает все посты пользователя (новые первыми).
func (s *Storage) PostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Post, error) {
	const op = "storage.postgres.PostsByAuthor"

	query := `
		SELECT id, author_id, content, created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := s.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return posts, nil
}

// DeletePost удаляет пост, если он принадлежит authorID.
// Отсутствие строки (нет поста или чужой пост) → storage.ErrNotFound;
// владение проверяется тем же запросом, без отдельного чтения.
func (s *Storage) DeletePost(ctx context.Context, id, authorID uuid.UUID) error {
	const op = "storage.postgres.DeletePost"

	query := `
		DELETE FROM posts
		WHERE id = $1 AND author_id = $2
	`

	tag, err := s.db.Exec(ctx, query, id, authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
