// storage задаёт контракт работы с персистентным хранилищем.
// Хранилище — единственный источник истины о пользователях и постах;
// кэш в internal/cache хранит только best-effort снэпшоты.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-platform/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/пост).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PostStorage выполняет операции над постами.
type PostStorage interface {
	// SavePost сохраняет новый пост.
	SavePost(ctx context.Context, post *models.Post) error
	// PostsByAuthor возвращает все посты пользователя (новые первыми).
	PostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Post, error)
	// DeletePost удаляет пост, если он принадлежит authorID.
	DeletePost(ctx context.Context, id, authorID uuid.UUID) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	PostStorage
	Close()
}
