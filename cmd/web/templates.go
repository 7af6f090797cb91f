package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/justinas/nosurf"
	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/ui"
)

type BaseTemplateData struct {
	CSRFToken string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CSRFToken: nosurf.Token(r),
	}
}

// newTemplateCache parses every page under templates/pages together with the
// base layout. Fragments live as named templates inside their page's set.
func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := fs.Glob(ui.Files, "templates/pages/*")
	if err != nil {
		return nil, errors.Wrap(err, "glob pages")
	}

	for _, page := range pages {
		name := filepath.Base(page)
		ts, err := template.ParseFS(ui.Files, "templates/base.gohtml", page+"/*.gohtml")
		if err != nil {
			return nil, errors.Wrap(err, "parse templates")
		}
		cache[name] = ts
	}

	return cache, nil
}

// render writes the named template from the page's template set. Pages render
// through "base", fragments through their own defined name.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page, name string, data any) {
	ts, ok := app.templates[page]
	if !ok {
		app.serverError(w, r, fmt.Errorf("template page %s does not exist", page))
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template"))
		return
	}

	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		app.logger.Error("write response", errors.SlogError(err))
	}
}
