package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-blog-platform/internal/models"
)

func TestIssueToken_AndVerify_OK(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	now := time.Now().UTC()

	for _, kind := range []tokenKind{tokenKindAccess, tokenKindRefresh} {
		signed, err := svc.issueToken(ctx, user, kind, now)
		require.NoError(t, err)

		claims, err := svc.verifyToken(signed, kind)
		require.NoError(t, err)
		require.Equal(t, user.ID.String(), claims.UserID)
		require.Equal(t, user.Email, claims.Subject)
	}
}

func TestVerifyToken_CrossKind_FailsBySignature(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	now := time.Now().UTC()

	at, err := svc.issueToken(ctx, user, tokenKindAccess, now)
	require.NoError(t, err)
	rt, err := svc.issueToken(ctx, user, tokenKindRefresh, now)
	require.NoError(t, err)

	// Секреты разные, поэтому перекрёстная проверка ломается на подписи.
	_, err = svc.verifyToken(at, tokenKindRefresh)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.verifyToken(rt, tokenKindAccess)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	svc.cfg.Auth.AccessTokenTTL = -10 * time.Second

	at, err := svc.issueToken(context.Background(), &models.User{ID: uuid.New(), Email: "e@e.com"}, tokenKindAccess, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.verifyToken(at, tokenKindAccess)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyToken_Garbage_TamperedSignature(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.verifyToken("not-a-jwt", tokenKindAccess)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	at, err := svc.issueToken(context.Background(), &models.User{ID: uuid.New(), Email: "e@e.com"}, tokenKindAccess, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.verifyToken(at+"x", tokenKindAccess)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_WrongAlg_WrongIssuer_MissingClaims(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	secret := []byte(svc.cfg.Auth.AccessSecret)
	uid := uuid.New()
	now := time.Now().UTC()

	t.Run("wrong alg", func(t *testing.T) {
		claims := jwt.MapClaims{
			"uid": uid.String(),
			"sub": "a@b.c",
			"iss": svc.cfg.Auth.Issuer,
			"exp": now.Add(time.Minute).Unix(),
			"iat": now.Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = svc.verifyToken(signed, tokenKindAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := jwt.MapClaims{
			"uid": uid.String(),
			"sub": "a@b.c",
			"iss": "another-issuer",
			"exp": now.Add(time.Minute).Unix(),
			"iat": now.Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = svc.verifyToken(signed, tokenKindAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing exp", func(t *testing.T) {
		claims := jwt.MapClaims{
			"uid": uid.String(),
			"sub": "a@b.c",
			"iss": svc.cfg.Auth.Issuer,
			"iat": now.Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = svc.verifyToken(signed, tokenKindAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing sub", func(t *testing.T) {
		claims := jwt.MapClaims{
			"uid": uid.String(),
			"iss": svc.cfg.Auth.Issuer,
			"exp": now.Add(time.Minute).Unix(),
			"iat": now.Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = svc.verifyToken(signed, tokenKindAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssueTokenPair_DistinctTokens(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Email: "user@example.com"}

	tp, err := svc.issueTokenPair(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, tp.AccessToken)
	require.NotEmpty(t, tp.RefreshToken)
	require.NotEqual(t, tp.AccessToken, tp.RefreshToken)

	_, err = svc.verifyToken(tp.AccessToken, tokenKindAccess)
	require.NoError(t, err)
	_, err = svc.verifyToken(tp.RefreshToken, tokenKindRefresh)
	require.NoError(t, err)
}
