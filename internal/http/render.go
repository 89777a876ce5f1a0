package http

import (
	"bytes"
	"fmt"
	"html/template"

	"orcamento/internal/dashboard"
	appweb "orcamento/web"
)

// fragment is the data every template receives. OOB marks the fragment for
// an htmx out-of-band swap.
type fragment struct {
	V   dashboard.View
	OOB bool
}

// Renderer turns a dashboard.View into the page or into htmx fragments.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Page renders the full document.
func (r *Renderer) Page(v dashboard.View) ([]byte, error) {
	return r.execute([]string{"page"}, fragment{V: v})
}

// Sections renders the dashboard sections as out-of-band swaps. When the
// load failed the summary and goals already on the page are left alone.
func (r *Renderer) Sections(v dashboard.View) ([]byte, error) {
	names := []string{"expenses", "feedback"}
	if v.Loaded {
		names = []string{"summary", "expenses", "goals", "feedback"}
	}
	return r.execute(names, fragment{V: v, OOB: true})
}

// Submission renders the form in place plus the status line out of band.
// An accepted expense also carries the reloaded dashboard sections.
func (r *Renderer) Submission(res dashboard.SubmitResult) ([]byte, error) {
	v := dashboard.View{Form: res.Form, Feedback: res.Feedback}
	if res.Reload != nil {
		v = *res.Reload
		v.Form = res.Form
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "form", fragment{V: v}); err != nil {
		return nil, fmt.Errorf("render form: %w", err)
	}

	if res.Reload != nil {
		sections, err := r.Sections(v)
		if err != nil {
			return nil, err
		}
		buf.Write(sections)
		return buf.Bytes(), nil
	}

	if err := r.templates.ExecuteTemplate(&buf, "feedback", fragment{V: v, OOB: true}); err != nil {
		return nil, fmt.Errorf("render feedback: %w", err)
	}
	return buf.Bytes(), nil
}

// RemainingField renders the remaining amount input after a form event.
func (r *Renderer) RemainingField(form dashboard.FormState) ([]byte, error) {
	return r.execute([]string{"remaining_field"}, fragment{V: dashboard.View{Form: form}})
}

// Nav renders the navigation bar.
func (r *Renderer) Nav(nav dashboard.Nav) ([]byte, error) {
	return r.execute([]string{"nav"}, fragment{V: dashboard.View{Nav: nav}})
}

func (r *Renderer) execute(names []string, data fragment) ([]byte, error) {
	var buf bytes.Buffer
	for _, name := range names {
		if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
	}
	return buf.Bytes(), nil
}
