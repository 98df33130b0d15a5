package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"papertrade/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"index", "buy", "sell", "quote", "quoted", "history", "login", "register", "apology",
}

// TemplateRenderer implements echo.Renderer. Each page is parsed together
// with the shared layout and rendered through its "layout" template.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses the embedded templates
func NewTemplateRenderer() (*TemplateRenderer, error) {
	base, err := template.New("layout.html").Funcs(template.FuncMap{
		"usd":      USD,
		"datetime": utils.FormatTimestamp,
	}).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &TemplateRenderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer
func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// USD formats an amount as US dollars, e.g. $1,234.50
func USD(amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
