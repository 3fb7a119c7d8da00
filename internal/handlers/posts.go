package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/petermazzocco/blogly/internal/store"
	"github.com/petermazzocco/blogly/internal/views"
)

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		log.Println("Failed to list posts:", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "posts.html", views.Page{Posts: posts})
}

func (h *Handler) NewPostForm(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), urlID(r, "userID"))
	if err != nil {
		h.storeError(w, r, err, "User")
		return
	}
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		h.storeError(w, r, err, "Tag")
		return
	}
	h.render(w, r, "post_new.html", views.Page{User: user, Tags: tags})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	fields, ok := requireForm(r, "title", "content")
	if !ok {
		h.renderError(w, r, "Missing form data")
		return
	}

	userID := urlID(r, "userID")
	post, err := h.store.CreatePost(r.Context(), userID, store.PostInput{
		Title:   fields[0],
		Content: fields[1],
		TagIDs:  formIDs(r, "tag_ids"),
	})
	if err != nil {
		h.storeError(w, r, err, "User")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("Post '%s' added.", post.Title))
	http.Redirect(w, r, fmt.Sprintf("/users/%d", post.UserID), http.StatusFound)
}

func (h *Handler) ShowPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPost(r.Context(), urlID(r, "postID"))
	if err != nil {
		h.storeError(w, r, err, "Post")
		return
	}
	h.render(w, r, "post_show.html", views.Page{Post: post})
}

func (h *Handler) EditPostForm(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPost(r.Context(), urlID(r, "postID"))
	if err != nil {
		h.storeError(w, r, err, "Post")
		return
	}
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		h.storeError(w, r, err, "Tag")
		return
	}

	selected := make(map[uint]bool, len(post.Tags))
	for _, tag := range post.Tags {
		selected[tag.ID] = true
	}
	h.render(w, r, "post_edit.html", views.Page{Post: post, Tags: tags, Selected: selected})
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	fields, ok := requireForm(r, "title", "content")
	if !ok {
		h.renderError(w, r, "Missing form data")
		return
	}

	post, err := h.store.UpdatePost(r.Context(), urlID(r, "postID"), store.PostInput{
		Title:   fields[0],
		Content: fields[1],
		TagIDs:  formIDs(r, "tag_ids"),
	})
	if err != nil {
		h.storeError(w, r, err, "Post")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("Post '%s' edited.", post.Title))
	http.Redirect(w, r, fmt.Sprintf("/posts/%d", post.ID), http.StatusFound)
}

// DeletePost sends the user back to the former owner's page.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.DeletePost(r.Context(), urlID(r, "postID"))
	if err != nil {
		h.storeError(w, r, err, "Post")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("Post '%s' deleted.", post.Title))
	http.Redirect(w, r, fmt.Sprintf("/users/%d", post.UserID), http.StatusFound)
}
