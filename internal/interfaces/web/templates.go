package web

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templatesFS embed.FS

// mdRenderer escapes raw HTML found in bulletin bodies.
var mdRenderer = goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()))

var funcs = template.FuncMap{
	"markdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"inc": func(i int) int { return i + 1 },
}

// pages maps a page name to base.html plus the files that fill it in.
var pages = map[string][]string{
	"login": {"templates/base.html", "templates/login.html"},
	"shell": {
		"templates/base.html",
		"templates/shell.html",
		"templates/home.html",
		"templates/tournaments.html",
		"templates/lessons.html",
		"templates/social.html",
		"templates/health.html",
		"templates/profile.html",
	},
}

func ParseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for name, files := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}
