// Package web holds the HTML pages served to employees.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	FormPage   = "lform.html"
	ResultPage = "result.html"
	ErrorPage  = "error.html"
)

// Templates parses every embedded page together with the shared layout.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}).ParseFS(templateFS, "templates/*.html")
}
