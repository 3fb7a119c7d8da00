package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/petermazzocco/blogly/internal/session"
	"github.com/petermazzocco/blogly/internal/store"
	"github.com/petermazzocco/blogly/internal/views"
)

// Handler serves every Blogly page. All state lives in the store it was given.
type Handler struct {
	store *store.Store
	views *views.Views
	flash *session.Flash
}

func New(s *store.Store, v *views.Views, f *session.Flash) *Handler {
	return &Handler{store: s, views: v, flash: f}
}

// Router wires the routes. rateLimit caps POSTs per IP and endpoint each minute; 0 disables it.
func (h *Handler) Router(rateLimit int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	limit := func(next http.Handler) http.Handler { return next }
	if rateLimit > 0 {
		limit = httprate.Limit(
			rateLimit,
			1*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/users", http.StatusFound)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Get("/new", h.NewUserForm)
		r.With(limit).Post("/new", h.CreateUser)
		r.Route("/{userID:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.ShowUser)
			r.Get("/edit", h.EditUserForm)
			r.With(limit).Post("/edit", h.UpdateUser)
			r.With(limit).Post("/delete", h.DeleteUser)
			r.Get("/posts/new", h.NewPostForm)
			r.With(limit).Post("/posts/new", h.CreatePost)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.Route("/{postID:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.ShowPost)
			r.Get("/edit", h.EditPostForm)
			r.With(limit).Post("/edit", h.UpdatePost)
			r.With(limit).Post("/delete", h.DeletePost)
		})
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.ListTags)
		r.Get("/new", h.NewTagForm)
		r.With(limit).Post("/new", h.CreateTag)
		r.Route("/{tagID:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.ShowTag)
			r.Get("/edit", h.EditTagForm)
			r.With(limit).Post("/edit", h.UpdateTag)
			r.With(limit).Post("/delete", h.DeleteTag)
		})
	})

	return r
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, page views.Page) {
	page.Flashes = h.flash.Pop(w, r)

	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, page); err != nil {
		log.Printf("Failed to render %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// renderError shows the error page. Like every other page it is sent with 200.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, msg string) {
	h.render(w, r, "error.html", views.Page{Error: msg})
}

// storeError maps a store failure to the page the user sees. entity names
// what a not-found refers to ("User", "Post", "Tag").
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.renderError(w, r, entity+" not found")
	case errors.Is(err, store.ErrMissingField):
		h.renderError(w, r, "Missing form data")
	case errors.Is(err, store.ErrDuplicateTagName):
		h.renderError(w, r, "Tag name already taken")
	default:
		log.Println("Database error:", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
	}
}
