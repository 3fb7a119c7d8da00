package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/petermazzocco/blogly/models"
)

//go:embed templates/*.html
var files embed.FS

const layout = "templates/base.html"

// Page is everything a template may show. Handlers fill in only what the
// page needs.
type Page struct {
	Flashes []string
	Error   string

	User  *models.User
	Users []models.User
	Post  *models.Post
	Posts []models.Post
	Tag   *models.Tag
	Tags  []models.Tag

	// Selected marks the ids pre-checked in an edit form's checkbox list.
	Selected map[uint]bool
}

type Views struct {
	pages map[string]*template.Template
}

// New parses every page under templates/ against the shared layout.
func New() (*Views, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layout {
			continue
		}
		t, err := template.New(path.Base(layout)).ParseFS(files, layout, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[path.Base(name)] = t
	}
	return &Views{pages: pages}, nil
}

func (v *Views) Render(w io.Writer, name string, page Page) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, path.Base(layout), page)
}
