package views

import (
	"github.com/Khayman1/titanic-streamlit/engine"
)

// Page is a rendered view, independent of the output medium.
type Page struct {
	Kind     Kind      `json:"-"`
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Intro    string    `json:"intro,omitempty"`
	Tabs     []Link    `json:"tabs,omitempty"`
	Form     *Form     `json:"form,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is one block of a page. Any combination of fields may be set;
// renderers draw them in field order.
type Section struct {
	Heading string              `json:"heading,omitempty"`
	Metrics []Metric            `json:"metrics,omitempty"`
	Chart   *engine.ChartConfig `json:"chart,omitempty"`
	Table   *engine.TableData   `json:"table,omitempty"`
	Text    string              `json:"text,omitempty"`
	Notes   []string            `json:"notes,omitempty"`
	Tone    Tone                `json:"tone,omitempty"`
	Links   []Link              `json:"links,omitempty"`
}

// Tone colours a section's notes.
type Tone string

const (
	Info    Tone = "info"
	Warning Tone = "warning"
	Success Tone = "success"
)

// Metric is a headline number.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
}

// Link points at another page or a download.
type Link struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active,omitempty"`
}

// Form describes the inputs a page accepts as query parameters.
type Form struct {
	Action string  `json:"action"`
	Fields []Field `json:"fields"`
	Submit string  `json:"submit"`
}

// Field kinds.
const (
	FieldMulti  = "multi"  // checkboxes, repeated parameter
	FieldSelect = "select" // one choice
	FieldNumber = "number"
	FieldHidden = "hidden"
)

// Field is one form input.
type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Options []Option `json:"options,omitempty"`
	Value   string   `json:"value,omitempty"`
	Min     string   `json:"min,omitempty"`
	Max     string   `json:"max,omitempty"`
	Step    string   `json:"step,omitempty"`
}

// Option is one choice of a multi or select field.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

func newPage(k Kind, title, intro string) *Page {
	return &Page{Kind: k, Slug: k.Slug(), Title: title, Intro: intro}
}

func (p *Page) add(s Section) { p.Sections = append(p.Sections, s) }

func options(values []string, labels map[string]string, selected []string) []Option {
	chosen := make(map[string]bool, len(selected))
	for _, v := range selected {
		chosen[v] = true
	}
	out := make([]Option, len(values))
	for i, v := range values {
		label := v
		if l, ok := labels[v]; ok {
			label = l
		}
		out[i] = Option{Value: v, Label: label, Selected: chosen[v]}
	}
	return out
}
