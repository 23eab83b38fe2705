package models

import "time"

// TokenPair — пара токенов, выдаваемая при аутентификации/регистрации.
//
// Описание:
//   - AccessToken — короткоживущий JWT для доступа к API;
//   - RefreshToken — долгоживущий JWT, подписанный отдельным секретом
//     и пригодный только для выпуска нового access-токена;
//   - AccessExpiresAt — момент истечения access-токена (UTC).
//
// При обновлении через Refresh поле RefreshToken остаётся пустым:
// действующий refresh-токен не ротируется и не отзывается.
type TokenPair struct {
	// AccessToken — JWT для авторизации запросов.
	AccessToken string
	// RefreshToken — JWT для обновления access-токена.
	RefreshToken string
	// AccessExpiresAt — время истечения действия access-токена (UTC).
	AccessExpiresAt time.Time
}
