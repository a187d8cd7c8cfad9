// Package web embeds the HTML templates and static assets of the site.
package web

import (
	"effisense-go/internal/model"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format(model.DateFormat) },
	"datetime": func(t time.Time) string {
		return t.Format(model.EventTimeFormat)
	},
	"optdate": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(model.DateFormat)
	},
	"optint": func(n *int) string {
		if n == nil {
			return "-"
		}
		return fmt.Sprint(*n)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"kwh": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"fielderr": func(errs map[string]string, field string) string {
		return errs[field]
	},
}

// Templates parses every page and partial. Templates are addressed by their {{define}} name, e.g. "homes/index".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// Static returns the asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
