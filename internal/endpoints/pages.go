package endpoints

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strconv"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const (
	indexPage = "index.html"
	errorPage = "error.html"
)

var pageFuncs = template.FuncMap{
	"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"level": func(v float64) string {
		switch {
		case v >= 90:
			return "crit"
		case v >= 70:
			return "warn"
		default:
			return "ok"
		}
	},
}

// Pages renders the HTML views. With reload set, templates are parsed from
// dir on every render so edits show up without restarting.
type Pages struct {
	src    fs.FS
	reload bool
	parsed *template.Template
}

// NewPages parses the embedded templates, or the ones in dir when dir is set.
func NewPages(dir string, reload bool) (*Pages, error) {
	var src fs.FS
	if dir != "" {
		src = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		src = sub
		reload = false
	}

	parsed, err := parsePages(src)
	if err != nil {
		return nil, err
	}
	return &Pages{src: src, reload: reload, parsed: parsed}, nil
}

// MustDefaultPages returns the embedded templates; they are compiled into
// the binary so a parse failure is a programming error.
func MustDefaultPages() *Pages {
	p, err := NewPages("", false)
	if err != nil {
		panic(err)
	}
	return p
}

func parsePages(src fs.FS) (*template.Template, error) {
	t, err := template.New("pages").Funcs(pageFuncs).ParseFS(src, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	for _, name := range []string{indexPage, errorPage} {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("parsing templates: %s not defined", name)
		}
	}
	return t, nil
}

// Render executes name into a buffer first so a failing template never
// leaves a half-written response.
func (p *Pages) Render(w io.Writer, name string, data interface{}) error {
	t := p.parsed
	if p.reload {
		fresh, err := parsePages(p.src)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPageRender, err)
		}
		t = fresh
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
