package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/petermazzocco/blogly/internal/store"
	"github.com/petermazzocco/blogly/internal/views"
	"github.com/petermazzocco/blogly/models"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Println("Failed to list users:", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "users.html", views.Page{Users: users})
}

func (h *Handler) NewUserForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "user_new.html", views.Page{})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	fields, ok := requireForm(r, "first_name", "last_name")
	if !ok {
		h.renderError(w, r, "Missing form data")
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.UserInput{
		FirstName: fields[0],
		LastName:  fields[1],
		ImageURL:  r.PostForm.Get("image_url"),
	})
	if err != nil {
		h.storeError(w, r, err, "User")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("User %s added.", user.FullName()))
	http.Redirect(w, r, "/users", http.StatusFound)
}

func (h *Handler) ShowUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), urlID(r, "userID"))
	if err != nil {
		h.storeError(w, r, err, "User")
		return
	}
	h.render(w, r, "user_show.html", views.Page{User: user})
}

func (h *Handler) EditUserForm(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), urlID(r, "userID"))
	if err != nil {
		h.storeError(w, r, err, "User")
		return
	}

	// Show the placeholder as an empty field so saving doesn't store it as a custom picture
	if user.ImageURL == models.DefaultImageURL {
		user.ImageURL = ""
	}
	h.render(w, r, "user_edit.html", views.Page{User: user})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	fields, ok := requireForm(r, "first_name", "last_name")
	if !ok {
		h.renderError(w, r, "Missing form data")
		return
	}

	user, err := h.store.UpdateUser(r.Context(), urlID(r, "userID"), store.UserInput{
		FirstName: fields[0],
		LastName:  fields[1],
		ImageURL:  r.PostForm.Get("image_url"),
	})
	if err != nil {
		h.storeError(w, r, err, "User")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("User %s edited.", user.FullName()))
	http.Redirect(w, r, "/users", http.StatusFound)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.DeleteUser(r.Context(), urlID(r, "userID"))
	if err != nil {
		h.storeError(w, r, err, "User")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("User %s deleted.", user.FullName()))
	http.Redirect(w, r, "/users", http.StatusFound)
}
