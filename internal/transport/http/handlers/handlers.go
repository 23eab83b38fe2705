package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/service"
	"github.com/pribylovaa/go-blog-platform/internal/transport/http/middleware"
)

// Handlers агрегирует зависимости (доменный сервис).
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// authedUser резолвит bearer-токен запроса в пользователя.
// Отсутствующий токен неотличим снаружи от невалидного.
func (h *Handlers) authedUser(r *http.Request) (*models.User, error) {
	token := middleware.TokenFrom(r.Context())
	if token == "" {
		return nil, service.ErrInvalidToken
	}

	return h.svc.ResolveToken(r.Context(), token)
}
