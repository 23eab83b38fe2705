package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/transport/http/apierrors"
)

type createPostRequest struct {
	Content string `json:"content"`
}

type postResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type postsResponse struct {
	Posts []postResponse `json:"posts"`
}

func toPostResponse(p models.Post) postResponse {
	return postResponse{
		ID:        p.ID.String(),
		AuthorID:  p.AuthorID.String(),
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := h.authedUser(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in createPostRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrMalformedRequest)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), user.ID, in.Content)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(*post))
}

// ListPosts возвращает посты аутентифицированного автора, новые первыми.
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	user, err := h.authedUser(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	posts, err := h.svc.PostsByAuthor(r.Context(), user.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := postsResponse{Posts: make([]postResponse, 0, len(posts))}
	for _, p := range posts {
		out.Posts = append(out.Posts, toPostResponse(p))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, err := h.authedUser(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrMalformedRequest)
		return
	}

	if err := h.svc.DeletePost(r.Context(), postID, user.ID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
