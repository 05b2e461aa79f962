package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"todolist-web/internal/lists"
	"todolist-web/internal/models"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names accepted by Renderer.Instance
const (
	PageLists    = "lists.html"
	PageNewList  = "new_list.html"
	PageList     = "list.html"
	PageEditList = "edit_list.html"
)

var pages = []string{PageLists, PageNewList, PageList, PageEditList}

// Page is the data every template is executed with
type Page struct {
	Title string
	Flash models.Flash
	// Error is a validation message for the form on this page
	Error string

	Lists []models.List
	List  *models.List

	// Submitted form values, echoed back when validation fails
	ListName string
	TodoName string
}

// Renderer is a gin HTMLRender that wraps every page in the shared layout
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded layout together with each page
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcMap()).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// Instance implements render.HTMLRender
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.templates[name]
	if !ok {
		return render.String{Format: "unknown page %q", Data: []any{name}}
	}
	return render.HTML{
		Template: tmpl,
		Name:     "layout",
		Data:     data,
	}
}

// StaticFS serves the embedded stylesheet and script
func StaticFS() (http.FileSystem, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}
	return http.FS(sub), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"todosCount":     lists.TodosCount,
		"todosRemaining": lists.TodosRemaining,
		"listComplete":   lists.IsComplete,
		"orderLists":     lists.OrderLists,
		"orderTodos":     lists.OrderTodos,
		"listClass": func(list models.List) string {
			if lists.IsComplete(list) {
				return "complete"
			}
			return ""
		},
	}
}
