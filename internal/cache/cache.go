// cache — Redis-бэкенд для двух задач с разной политикой отказа:
//
//   - отзыв access-токенов (logout): запись живёт не дольше, чем жил бы
//     сам токен, поэтому её естественное истечение безопасно. Ошибки
//     Redis здесь НЕ маскируются — решение принимает вызывающая сторона
//     (fail-closed в service.ResolveToken);
//   - best-effort кэш снэпшотов пользователей и списков постов: источник
//     истины — БД, промах или недоступность Redis равнозначны холодному
//     кэшу (fail-open в service).
//
// Все операции выполняются под собственным коротким таймаутом (OpTimeout),
// чтобы недоступный Redis не задерживал запрос дольше, чем занимает
// fallback в БД.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-blog-platform/internal/models"
)

// Cache — контракт Redis-бэкенда сервиса.
type Cache interface {
	// RevokeToken помечает токен отозванным до его естественного истечения.
	// TTL записи = min(expiresAt-now, RevocationTTL); если токен уже
	// истёк — запись не создаётся (no-op).
	RevokeToken(ctx context.Context, token string, expiresAt time.Time) error
	// IsTokenRevoked проверяет наличие записи об отзыве.
	IsTokenRevoked(ctx context.Context, token string) (bool, error)

	// User возвращает кэшированный снэпшот пользователя и признак попадания.
	User(ctx context.Context, email string) (*models.User, bool, error)
	// SetUser сохраняет снэпшот пользователя с TTL.
	SetUser(ctx context.Context, user *models.User, ttl time.Duration) error
	// InvalidateUser удаляет снэпшот пользователя.
	InvalidateUser(ctx context.Context, email string) error

	// Posts возвращает кэшированный список постов и признак попадания.
	Posts(ctx context.Context, authorID uuid.UUID) ([]models.Post, bool, error)
	// SetPosts сохраняет список постов пользователя с TTL.
	SetPosts(ctx context.Context, authorID uuid.UUID, posts []models.Post, ttl time.Duration) error
	// InvalidatePosts удаляет список постов пользователя.
	InvalidatePosts(ctx context.Context, authorID uuid.UUID) error

	// Close закрывает клиент Redis.
	Close() error
}

// Options — параметры бэкенда.
type Options struct {
	// Prefix ключей; пустой — "blog:".
	Prefix string
	// OpTimeout ограничивает одну операцию с Redis; <=0 — без лимита.
	OpTimeout time.Duration
	// RevocationTTL — верхняя граница жизни записи об отзыве.
	RevocationTTL time.Duration
}

type redisCache struct {
	rdb           *redis.Client
	prefix        string
	opTimeout     time.Duration
	revocationTTL time.Duration
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
func NewRedisCache(redisURL string, opts Options) (Cache, error) {
	if opts.Prefix == "" {
		opts.Prefix = "blog:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{
		rdb:           rdb,
		prefix:        opts.Prefix,
		opTimeout:     opts.OpTimeout,
		revocationTTL: opts.RevocationTTL,
	}, nil
}

func (c *redisCache) revokedKey(token string) string {
	// В Redis попадает не сам bearer-токен, а его sha256-хэш.
	sum := sha256.Sum256([]byte(token))
	return c.prefix + "revoked:" + base64.RawURLEncoding.EncodeToString(sum[:])
}

func (c *redisCache) userKey(email string) string {
	return c.prefix + "user:" + email
}

func (c *redisCache) postsKey(authorID uuid.UUID) string {
	return c.prefix + "posts:" + authorID.String()
}

// opCtx навешивает таймаут одной операции, если он задан.
func (c *redisCache) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.opTimeout)
}

// RevokeToken помечает токен отозванным.
// Запись об отзыве никогда не переживает сам токен: TTL вычисляется из
// remaining на момент записи, а не из фиксированной константы.
func (c *redisCache) RevokeToken(ctx context.Context, token string, expiresAt time.Time) error {
	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		// Токен уже непригоден — отзывать нечего.
		return nil
	}

	ttl := remaining
	if c.revocationTTL > 0 && ttl > c.revocationTTL {
		ttl = c.revocationTTL
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	// SET идемпотентен: повторный отзыв того же токена безвреден.
	return c.rdb.Set(ctx, c.revokedKey(token), "1", ttl).Err()
}

// IsTokenRevoked проверяет наличие записи об отзыве.
func (c *redisCache) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	n, err := c.rdb.Exists(ctx, c.revokedKey(token)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// entryVersion — версия схемы кэшированных записей; запись с другой
// версией трактуется как промах, а не как ошибка.
const entryVersion = 1

// userEntry — фиксированная схема кэшированного снэпшота пользователя.
// Явный список полей защищает от тихого дрейфа формата между кэшем и БД.
type userEntry struct {
	Version      int    `json:"v"`
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// User возвращает кэшированный снэпшот пользователя.
// Повреждённая запись или чужая версия схемы равнозначны промаху.
func (c *redisCache) User(ctx context.Context, email string) (*models.User, bool, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	data, err := c.rdb.Get(ctx, c.userKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var e userEntry
	if err := json.Unmarshal(data, &e); err != nil || e.Version != entryVersion {
		return nil, false, nil
	}

	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, false, nil
	}

	return &models.User{
		ID:           id,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		CreatedAt:    time.Unix(e.CreatedAt, 0).UTC(),
		UpdatedAt:    time.Unix(e.UpdatedAt, 0).UTC(),
	}, true, nil
}

// SetUser сохраняет снэпшот пользователя с TTL.
func (c *redisCache) SetUser(ctx context.Context, user *models.User, ttl time.Duration) error {
	e := userEntry{
		Version:      entryVersion,
		ID:           user.ID.String(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	return c.rdb.Set(ctx, c.userKey(user.Email), data, ttl).Err()
}

// InvalidateUser удаляет снэпшот пользователя.
func (c *redisCache) InvalidateUser(ctx context.Context, email string) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	return c.rdb.Del(ctx, c.userKey(email)).Err()
}

// postsEntry — фиксированная схема кэшированного списка постов.
type postsEntry struct {
	Version int         `json:"v"`
	Posts   []postEntry `json:"posts"`
}

type postEntry struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// Posts возвращает кэшированный список постов пользователя.
func (c *redisCache) Posts(ctx context.Context, authorID uuid.UUID) ([]models.Post, bool, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	data, err := c.rdb.Get(ctx, c.postsKey(authorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var e postsEntry
	if err := json.Unmarshal(data, &e); err != nil || e.Version != entryVersion {
		return nil, false, nil
	}

	posts := make([]models.Post, 0, len(e.Posts))
	for _, pe := range e.Posts {
		id, err := uuid.Parse(pe.ID)
		if err != nil {
			return nil, false, nil
		}

		aid, err := uuid.Parse(pe.AuthorID)
		if err != nil {
			return nil, false, nil
		}

		posts = append(posts, models.Post{
			ID:        id,
			AuthorID:  aid,
			Content:   pe.Content,
			CreatedAt: time.Unix(pe.CreatedAt, 0).UTC(),
		})
	}

	return posts, true, nil
}

// SetPosts сохраняет список постов пользователя с TTL.
func (c *redisCache) SetPosts(ctx context.Context, authorID uuid.UUID, posts []models.Post, ttl time.Duration) error {
	e := postsEntry{
		Version: entryVersion,
		Posts:   make([]postEntry, 0, len(posts)),
	}

	for _, p := range posts {
		e.Posts = append(e.Posts, postEntry{
			ID:        p.ID.String(),
			AuthorID:  p.AuthorID.String(),
			Content:   p.Content,
			CreatedAt: p.CreatedAt.Unix(),
		})
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	return c.rdb.Set(ctx, c.postsKey(authorID), data, ttl).Err()
}

// InvalidatePosts удаляет список постов пользователя.
func (c *redisCache) InvalidatePosts(ctx context.Context, authorID uuid.UUID) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	return c.rdb.Del(ctx, c.postsKey(authorID)).Err()
}

// Close закрывает клиент Redis.
func (c *redisCache) Close() error { return c.rdb.Close() }
