package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/pkg/log"
)

// tokenKind — вид токена. Каждый вид подписывается собственным секретом,
// поэтому подмена вида (refresh вместо access и наоборот) проваливает
// проверку подписи, а не проверку какого-нибудь поля в payload.
type tokenKind string

const (
	tokenKindAccess  tokenKind = "access"
	tokenKindRefresh tokenKind = "refresh"
)

// userClaims — полезная нагрузка токена. Subject — email (ключ
// идентичности), uid продублирован явным полем для удобства клиентов.
type userClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Service) secretFor(kind tokenKind) []byte {
	if kind == tokenKindRefresh {
		return []byte(s.cfg.Auth.RefreshSecret)
	}

	return []byte(s.cfg.Auth.AccessSecret)
}

func (s *Service) ttlFor(kind tokenKind) time.Duration {
	if kind == tokenKindRefresh {
		return s.cfg.Auth.RefreshTokenTTL
	}

	return s.cfg.Auth.AccessTokenTTL
}

// issueToken выпускает подписанный токен заданного вида.
func (s *Service) issueToken(ctx context.Context, user *models.User, kind tokenKind, now time.Time) (string, error) {
	const op = "service.token.issueToken"

	claims := userClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttlFor(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Auth.Issuer,
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretFor(kind))
	if err != nil {
		log.From(ctx).Error("token_sign_failed",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// verifyToken проверяет токен против контракта заданного вида.
//
// Три исхода, а не два:
//   - (claims, nil) — подпись и срок валидны;
//   - ErrTokenExpired — подпись валидна, срок истёк: штатное истечение,
//     для вызывающего такой же отказ, но с другим диагностическим сигналом;
//   - ErrInvalidToken — битая структура, неверная подпись или токен
//     другого вида.
//
// Сравнение срока — по текущим часам проверяющего, без leeway.
func (s *Service) verifyToken(tokenStr string, kind tokenKind) (*userClaims, error) {
	const op = "service.token.verifyToken"

	token, err := jwt.ParseWithClaims(tokenStr, &userClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return s.secretFor(kind), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Auth.Issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*userClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// issueTokenPair выпускает пару access+refresh токенов.
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	now := time.Now().UTC()

	access, err := s.issueToken(ctx, user, tokenKindAccess, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := s.issueToken(ctx, user, tokenKindRefresh, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: now.Add(s.cfg.Auth.AccessTokenTTL),
	}, nil
}
