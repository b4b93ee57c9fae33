package views

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/engine"
)

// DownloadView offers the three CSV files for download.
type DownloadView struct{}

func (DownloadView) Kind() Kind { return Download }

// DownloadPath is the route serving res as CSV.
func DownloadPath(res dataset.Resource) string { return "/download/" + string(res) }

func (DownloadView) Render(ctx context.Context, d *Data) (*Page, error) {
	page := newPage(Download, "📁 데이터 다운로드",
		"대시보드에서 사용한 원본 CSV 파일을 내려받을 수 있습니다. 파일은 엑셀에서 바로 열 수 있도록 UTF-8 BOM으로 저장됩니다.")

	files := d.Cache.Files()
	var sizes []engine.Record
	for _, res := range dataset.Resources() {
		name := files.Name(res)
		t, err := d.Table(ctx, res)
		if errors.Is(err, dataset.ErrResourceUnavailable) {
			d.logger().Warn("download unavailable", zap.String("resource", string(res)), zap.Error(err))
			page.add(Section{
				Heading: resourceLabel(res) + " (" + name + ")",
				Text:    "파일을 불러올 수 없습니다.",
				Tone:    Warning,
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		rows, cols := t.Shape()
		sizes = append(sizes, engine.Record{
			Dimensions: map[string]string{"file": name},
			Measures:   map[string]float64{"rows": float64(rows)},
		})
		page.add(Section{
			Heading: resourceLabel(res) + " (" + name + ")",
			Metrics: []Metric{
				{Label: "행", Value: engine.FormatInt(rows)},
				{Label: "열", Value: engine.FormatInt(cols)},
			},
			Links: []Link{{Label: "📥 " + name + " 다운로드", Href: DownloadPath(res)}},
		})
	}

	if len(sizes) == 0 {
		return page, nil
	}
	res, err := engine.Execute(engine.Query{
		Intent:      "chart",
		Aggregation: "sum",
		GroupBy:     []string{"file"},
		Visualize:   "bar",
		Title:       "파일별 행 수",
		XAxis:       "파일",
		YAxis:       "행 수",
	}, engine.NewSliceView(sizes), engine.WithDefaultMeasure("rows"), engine.WithLogger(d.logger()))
	if err != nil {
		return nil, err
	}
	page.add(Section{Chart: res.ChartConfig})
	return page, nil
}
