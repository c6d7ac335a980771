// Package view renders listings as HTML: a compact card for list pages and a
// full detail view. Rendering is a pure function of the property passed in.
package view

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/evcraddock/staylist/internal/format"
	"github.com/evcraddock/staylist/internal/listing"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrNilProperty is returned by Card when called without a property.
// The card has no fallback; only the detail view renders one.
var ErrNilProperty = errors.New("card requires a property")

// Renderer executes the embedded view templates.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	funcMap := template.FuncMap{
		"stars":       format.Stars,
		"reviewStars": format.ReviewStars,
		"rating":      format.Rating,
		"price":       format.Price,
		"perNight":    func() string { return format.PerNight },
		"bookingPath": func() string { return listing.BookingPath },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Renderer{templates: tmpl}, nil
}

// Card writes the summary card for p.
func (r *Renderer) Card(w io.Writer, p *listing.Property) error {
	if p == nil {
		return ErrNilProperty
	}
	return r.execute(w, "card", p)
}

// Detail writes the full view for p. A nil p renders the
// "Property data not available" message and nothing else.
func (r *Renderer) Detail(w io.Writer, p *listing.Property) error {
	return r.execute(w, "detail", p)
}

// ListPage writes a full HTML page with one card per property, in order.
func (r *Renderer) ListPage(w io.Writer, props []*listing.Property) error {
	for i, p := range props {
		if p == nil {
			return fmt.Errorf("property %d: %w", i, ErrNilProperty)
		}
	}
	return r.execute(w, "list.html", props)
}

// DetailPage writes a full HTML page around the detail view.
func (r *Renderer) DetailPage(w io.Writer, p *listing.Property) error {
	return r.execute(w, "property.html", p)
}

// BookingPage writes the booking placeholder page.
func (r *Renderer) BookingPage(w io.Writer) error {
	return r.execute(w, "booking.html", nil)
}

func (r *Renderer) execute(w io.Writer, name string, data interface{}) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}
