package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"freightportal/internal/auth"
	"freightportal/internal/carrier"
	"freightportal/internal/models"
	"freightportal/internal/taxid"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLogin   = "login"
	pageForgot  = "forgot"
	pageReset   = "reset"
	pageLoading = "loading"
	pageDetail  = "detail"
)

var pageTitles = map[string]string{
	pageLogin:   "Entrar",
	pageForgot:  "Esqueci minha senha",
	pageReset:   "Redefinir senha",
	pageLoading: "Carregando",
	pageDetail:  "Detalhe do pedido",
}

// page is the data every template receives.
type page struct {
	Title   string
	Refresh int
	Flashes []auth.Flash
	CSRF    string
	Signed  bool
	TaxID   string
	Draft   string
	Detail  *carrier.Detail
}

func newPage(s *auth.Session) page {
	return page{
		Flashes: s.Flashes(),
		CSRF:    s.CSRFToken,
		Signed:  s.Signed,
		TaxID:   s.TaxID,
		Draft:   s.Draft,
	}
}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	funcs := template.FuncMap{
		"brl":  models.FormatBRL,
		"mask": taxid.Mask,
	}
	v := &views{pages: make(map[string]*template.Template, len(pageTitles))}
	for name := range pageTitles {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes into a buffer so a template error never leaves a half
// written page.
func (v *views) render(w http.ResponseWriter, status int, name string, data page) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if data.Title == "" {
		data.Title = pageTitles[name]
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
