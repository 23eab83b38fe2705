// models содержит доменные сущности blog-сервиса.
// Эти типы используются слоями бизнес-логики, хранилища, кэша и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User — модель пользователя в системе.
//
// Особенности:
//   - ID — UUIDv4;
//   - Email — нормализованный (lowercase) идентификатор входа;
//   - PasswordHash — bcrypt-хэш пароля, наружу никогда не отдаётся;
//   - Временные метки — в UTC.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
