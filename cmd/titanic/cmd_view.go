package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Khayman1/titanic-streamlit/views"
)

var (
	viewFormat string
	viewParams []string
	viewStyle  string
	viewWidth  int
	viewOut    string
)

var viewCmd = &cobra.Command{
	Use:   "view <home|passengers|survival|search|predict|download>",
	Short: "Render one dashboard view in the terminal",
	Long: `Render one dashboard view.

Formats:
  markdown  styled for the terminal (default)
  raw       plain markdown
  json      the page structure
  csv       chart and table data, one block per section

View parameters are passed as --param key=value, the same keys the web
forms use, e.g.:
  titanic view passengers --param tab=family
  titanic view predict --param sex=female --param age=8 --param pclass=2`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: viewSlugs(),
	RunE:      runView,
}

func init() {
	viewCmd.Flags().StringVarP(&viewFormat, "format", "f", "markdown", "Output format: markdown, raw, json, csv")
	viewCmd.Flags().StringArrayVarP(&viewParams, "param", "p", nil, "View parameter key=value (repeatable)")
	viewCmd.Flags().StringVar(&viewStyle, "style", "", "glamour style (dark, light, notty); default detects the terminal")
	viewCmd.Flags().IntVar(&viewWidth, "width", 100, "Word wrap width for markdown output")
	viewCmd.Flags().StringVarP(&viewOut, "out", "o", "", "Write output to file instead of stdout")
}

func viewSlugs() []string {
	slugs := make([]string, 0, len(views.Kinds()))
	for _, k := range views.Kinds() {
		slugs = append(slugs, k.Slug())
	}
	return slugs
}

func parseParams(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", views.ErrInvalidInput, p)
		}
		q.Add(strings.TrimSpace(key), value)
	}
	return q, nil
}

func runView(cmd *cobra.Command, args []string) error {
	kind, err := views.ParseKind(args[0])
	if err != nil {
		return err
	}
	q, err := parseParams(viewParams)
	if err != nil {
		return err
	}
	v, err := views.FromParams(kind, q)
	if err != nil {
		return err
	}

	data, closeRuns, err := newData(newCache(), true)
	if err != nil {
		return err
	}
	defer closeRuns()

	page, err := v.Render(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("render %s: %w", kind.Slug(), err)
	}

	w, closeOut, err := openOutput(viewOut)
	if err != nil {
		return err
	}
	defer closeOut()
	return writePage(w, page, viewFormat)
}

func writePage(w io.Writer, page *views.Page, format string) error {
	switch format {
	case "json":
		return writeJSON(w, page, true)
	case "raw":
		_, err := io.WriteString(w, views.Markdown(page))
		return err
	case "csv":
		first := true
		for _, s := range page.Sections {
			if s.Chart == nil && s.Table == nil {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			if s.Chart != nil {
				if err := writeChartCSV(w, s.Chart); err != nil {
					return err
				}
			}
			if s.Table != nil {
				if err := writeTableCSV(w, s.Table); err != nil {
					return err
				}
			}
		}
		return nil
	case "markdown", "":
		out, err := renderMarkdown(views.Markdown(page), viewStyle, viewWidth)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("%w: unknown format %q (want markdown, raw, json or csv)", views.ErrInvalidInput, format)
	}
}
