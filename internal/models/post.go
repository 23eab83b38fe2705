package models

import (
	"time"

	"github.com/google/uuid"
)

// Post — пост пользователя.
//
// Особенности:
//   - ID — UUIDv4;
//   - AuthorID — владелец поста (только он может его удалить);
//   - CreatedAt — в UTC.
type Post struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	CreatedAt time.Time
}
