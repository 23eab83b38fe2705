// service содержит бизнес-логику blog-сервиса: регистрацию и
// аутентификацию пользователей, выпуск/проверку/отзыв токенов,
// read-through кэширование пользователей и работу с постами.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования из разных горутин при условии, что
//     переданные storage.Storage и cache.Cache потокобезопасны;
//   - все разделяемое состояние живёт в Redis и PostgreSQL, оба бэкенда
//     дают атомарные по-ключевые операции;
//   - политика отказов у бэкендов разная: кэш пользователей/постов —
//     fail-open (БД всегда fallback), проверка отзыва токена —
//     fail-closed (пропустить отозванный токен нельзя);
//   - ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-blog-platform/internal/cache"
	"github.com/pribylovaa/go-blog-platform/internal/config"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь
	// не найден. Ответ единый для обоих случаев, чтобы по нему нельзя
	// было перебирать существующие email. Транспорт: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен некорректен по формату/подписи или подписан
	// секретом другого вида. Транспорт: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — подпись валидна, но срок действия токена истёк.
	// Транспорт: 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — токен отозван (logout) и недействителен
	// независимо от срока. Транспорт: 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrUserNotFound — claims токена валидны, но записи пользователя в БД
	// уже нет (удалена после выпуска токена). Транспорт: 401.
	ErrUserNotFound = errors.New("user not found")

	// ErrRevocationUnavailable — хранилище отзыва недоступно; проверить
	// токен нельзя, и пропускать его без проверки нельзя (fail-closed).
	// Транспорт: 503.
	ErrRevocationUnavailable = errors.New("revocation store unavailable")

	// ErrEmailTaken — email уже занят другим пользователем. Транспорт: 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — email имеет некорректный формат. Транспорт: 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике. Транспорт: 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrEmptyContent — пустой текст поста. Транспорт: 400.
	ErrEmptyContent = errors.New("post content is empty")

	// ErrPostTooLarge — текст поста превышает лимит. Транспорт: 400.
	ErrPostTooLarge = errors.New("post content too large")

	// ErrPostNotFound — пост не найден или принадлежит другому
	// пользователю; эти случаи намеренно неразличимы. Транспорт: 404.
	ErrPostNotFound = errors.New("post not found")
)

// Service описывает бизнес-логику blog-сервиса.
type Service struct {
	storage storage.Storage
	cache   cache.Cache
	cfg     *config.Config
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cache cache.Cache, cfg *config.Config) *Service {
	return &Service{
		storage: storage,
		cache:   cache,
		cfg:     cfg,
	}
}
