package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-blog-platform/internal/config"
	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/pkg/log"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

// RegisterUser регистрирует нового пользователя и сразу выдаёт пару токенов.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.RegisterUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password, s.cfg.Auth.Password); err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user.ID, nil
}

// LoginUser выполняет вход по email+пароль.
//
// Credential читается напрямую из БД, минуя кэш: после смены хэша пароль
// не должен проверяться по стейл-снэпшоту. Неизвестный email и неверный
// пароль дают один и тот же ErrInvalidCredentials.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.LoginUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user.ID, nil
}

// ResolveToken резолвит access-токен в пользователя.
//
// Порядок проверок фиксированный:
//  1. отзыв — дешёвый EXISTS отсекает разлогиненные сессии ещё до
//     криптографии; недоступность хранилища отзыва — отказ (fail-closed:
//     пропустить, не проверив, нельзя);
//  2. подпись и срок (verifyToken);
//  3. read-through резолв пользователя (кэш → БД, fail-open).
//
// Любой отказ транспорт показывает наружу одинаково (401); конкретная
// причина остаётся во внутренних логах.
func (s *Service) ResolveToken(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.auth.ResolveToken"

	lg := log.From(ctx)

	revoked, err := s.cache.IsTokenRevoked(ctx, accessToken)
	if err != nil {
		lg.Error("revocation_check_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrRevocationUnavailable)
	}

	if revoked {
		lg.Warn("token_revoked", slog.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	claims, err := s.verifyToken(accessToken, tokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.userByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Logout отзывает access-токен до его естественного истечения.
//
// Если токен уже непригоден (битый/просроченный), отзывать нечего —
// logout идемпотентен и завершается успехом. Если же токен валиден,
// запись об отзыве обязана стать видимой последующим ResolveToken, поэтому
// ошибка записи — это ошибка logout, а не молчаливый успех.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	const op = "service.auth.Logout"

	lg := log.From(ctx)

	claims, err := s.verifyToken(accessToken, tokenKindAccess)
	if err != nil {
		lg.Info("logout_noop_unusable_token", slog.String("op", op))
		return nil
	}

	if err := s.cache.RevokeToken(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
		lg.Error("revoke_write_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, ErrRevocationUnavailable)
	}

	return nil
}

// RefreshToken выпускает новый access-токен по действующему refresh-токену.
// Сам refresh-токен не ротируется и не отзывается; кэш не затрагивается.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "service.auth.RefreshToken"

	claims, err := s.verifyToken(refreshToken, tokenKindRefresh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	now := time.Now().UTC()
	user := &models.User{ID: uid, Email: claims.Subject}

	access, err := s.issueToken(ctx, user, tokenKindAccess, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     access,
		AccessExpiresAt: now.Add(s.cfg.Auth.AccessTokenTTL),
	}, nil
}

// userByEmail — read-through резолв пользователя: кэш → БД → населить кэш.
//
// Ошибка кэш-бэкенда (сеть/таймаут) не является ошибкой резолва: БД —
// fallback всегда, а населять недоступный кэш не пытаемся. Снэпшот в
// кэше может отставать от БД в пределах TTL — кэш не авторитетен.
func (s *Service) userByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "service.auth.userByEmail"

	lg := log.From(ctx)

	cacheUp := true
	cached, hit, err := s.cache.User(ctx, email)
	if err != nil {
		lg.Warn("user_cache_unavailable",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		cacheUp = false
	} else if hit {
		return cached, nil
	}

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cacheUp {
		if err := s.cache.SetUser(ctx, user, s.cfg.Cache.UserTTL); err != nil {
			lg.Warn("user_cache_set_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return user, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
// Соль генерируется на каждый вызов: два хэша одного пароля различаются.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
// Некорректный хэш — это просто несовпадение, не ошибка.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет пароль против настраиваемой политики.
// AlnumOnly воспроизводит ограничение исходной системы (латиница+цифры);
// по умолчанию выключено.
func validatePassword(pw string, policy config.PasswordPolicy) error {
	const op = "service.auth.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < policy.MinLength {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	if policy.AlnumOnly {
		for _, r := range pw {
			isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
			isDigit := r >= '0' && r <= '9'
			if !isLetter && !isDigit {
				return fmt.Errorf("%s: %w", op, ErrWeakPassword)
			}
		}
	}

	return nil
}
