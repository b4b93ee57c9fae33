package server

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/chart"
	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/views"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderer struct {
	tmpl   *template.Template
	md     goldmark.Markdown
	size   chart.Size
	logger *zap.Logger
}

func newRenderer(size chart.Size, logger *zap.Logger) *renderer {
	r := &renderer{md: goldmark.New(), size: size, logger: logger}
	r.tmpl = template.Must(template.New("").Funcs(template.FuncMap{
		"svg":      r.svg,
		"markdown": r.markdown,
		"inline":   r.inline,
	}).ParseFS(templateFS, "templates/*.html"))
	return r
}

type pageData struct {
	Nav       []views.Link
	Page      *views.Page
	Status    int
	Message   string
	RequestID string
}

func nav(active views.Kind) []views.Link {
	links := make([]views.Link, 0, len(views.Kinds()))
	for _, k := range views.Kinds() {
		links = append(links, views.Link{
			Label:  k.Icon() + " " + k.Label(),
			Href:   "/views/" + k.Slug(),
			Active: k == active,
		})
	}
	return links
}

func (r *renderer) page(w io.Writer, p *views.Page, requestID string) error {
	return r.tmpl.ExecuteTemplate(w, "page.html", pageData{
		Nav:       nav(p.Kind),
		Page:      p,
		RequestID: requestID,
	})
}

func (r *renderer) error(w io.Writer, status int, err error, requestID string) error {
	return r.tmpl.ExecuteTemplate(w, "error.html", pageData{
		Nav:       nav(-1),
		Status:    status,
		Message:   http.StatusText(status) + ": " + err.Error(),
		RequestID: requestID,
	})
}

// svg renders cfg inline. The XML prolog is dropped so the markup can be
// embedded in HTML.
func (r *renderer) svg(cfg *engine.ChartConfig) template.HTML {
	data, err := chart.SVG(cfg, r.size)
	if err != nil {
		r.logger.Warn("failed to render chart", zap.String("title", cfg.Title), zap.Error(err))
		return template.HTML(`<p class="chart-error">차트를 그릴 수 없습니다.</p>`)
	}
	if i := bytes.Index(data, []byte("<svg")); i > 0 {
		data = data[i:]
	}
	return template.HTML(data)
}

// markdown renders trusted page text; raw HTML in the source is not passed
// through.
func (r *renderer) markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

// inline is markdown without the enclosing paragraph.
func (r *renderer) inline(s string) template.HTML {
	out := bytes.TrimSpace([]byte(r.markdown(s)))
	out = bytes.TrimPrefix(out, []byte("<p>"))
	out = bytes.TrimSuffix(out, []byte("</p>"))
	return template.HTML(out)
}
