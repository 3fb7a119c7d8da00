package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/petermazzocco/blogly/internal/store"
	"github.com/petermazzocco/blogly/internal/views"
)

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		log.Println("Failed to list tags:", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "tags.html", views.Page{Tags: tags})
}

func (h *Handler) NewTagForm(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.storeError(w, r, err, "Post")
		return
	}
	h.render(w, r, "tag_new.html", views.Page{Posts: posts})
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	fields, ok := requireForm(r, "name")
	if !ok {
		h.renderError(w, r, "Missing form data")
		return
	}

	tag, err := h.store.CreateTag(r.Context(), store.TagInput{
		Name:    fields[0],
		PostIDs: formIDs(r, "post_ids"),
	})
	if err != nil {
		h.storeError(w, r, err, "Tag")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("Tag '%s' added.", tag.Name))
	http.Redirect(w, r, "/tags", http.StatusFound)
}

func (h *Handler) ShowTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.store.GetTag(r.Context(), urlID(r, "tagID"))
	if err != nil {
		h.storeError(w, r, err, "Tag")
		return
	}
	h.render(w, r, "tag_show.html", views.Page{Tag: tag})
}

func (h *Handler) EditTagForm(w http.ResponseWriter, r *http.Request) {
	tag, err := h.store.GetTag(r.Context(), urlID(r, "tagID"))
	if err != nil {
		h.storeError(w, r, err, "Tag")
		return
	}
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.storeError(w, r, err, "Post")
		return
	}

	selected := make(map[uint]bool, len(tag.Posts))
	for _, post := range tag.Posts {
		selected[post.ID] = true
	}
	h.render(w, r, "tag_edit.html", views.Page{Tag: tag, Posts: posts, Selected: selected})
}

func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	fields, ok := requireForm(r, "name")
	if !ok {
		h.renderError(w, r, "Missing form data")
		return
	}

	tag, err := h.store.UpdateTag(r.Context(), urlID(r, "tagID"), store.TagInput{
		Name:    fields[0],
		PostIDs: formIDs(r, "post_ids"),
	})
	if err != nil {
		h.storeError(w, r, err, "Tag")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("Tag '%s' edited.", tag.Name))
	http.Redirect(w, r, "/tags", http.StatusFound)
}

func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.store.DeleteTag(r.Context(), urlID(r, "tagID"))
	if err != nil {
		h.storeError(w, r, err, "Tag")
		return
	}

	h.flash.Add(w, r, fmt.Sprintf("Tag '%s' deleted.", tag.Name))
	http.Redirect(w, r, "/tags", http.StatusFound)
}
