package views

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/features"
	"github.com/Khayman1/titanic-streamlit/schema"
)

// ListColumns are the columns of passenger listings, in CSV order.
var ListColumns = []string{
	schema.DimPassengerID, schema.DimSurvived, schema.DimPclass, schema.DimName,
	schema.DimSex, schema.DimAge, schema.DimSibSp, schema.DimParch,
	schema.DimTicket, schema.DimFare, schema.DimCabin, schema.DimEmbarked,
}

// HomeView shows dataset shapes, survival totals and a sample of rows.
type HomeView struct {
	SampleSize int   // 0 => 10
	SampleSeed int64 // 0 => 42
}

func (HomeView) Kind() Kind { return Home }

func (v HomeView) Render(ctx context.Context, d *Data) (*Page, error) {
	page := newPage(Home, "🚢 타이타닉 생존자 대시보드",
		"이 대시보드는 **Kaggle 타이타닉 생존자 예측 경진대회** 기반으로 만들어졌습니다. "+
			"탐색적 자료 분석(EDA)과 머신러닝 모델을 통해 승객의 생존 여부를 시각적으로 분석합니다.")

	shapes := Section{Heading: "📁 데이터셋 개요"}
	for _, res := range dataset.Resources() {
		t, err := d.Table(ctx, res)
		if err != nil {
			return nil, err
		}
		rows, cols := t.Shape()
		shapes.Metrics = append(shapes.Metrics, Metric{
			Label: resourceLabel(res),
			Value: engine.FormatInt(rows) + "행",
			Delta: engine.FormatInt(cols) + "열",
		})
	}
	page.add(shapes)

	train, err := d.Train(ctx)
	if err != nil {
		return nil, err
	}
	view := train.View()

	total := view.Len()
	survived := int(engine.SumMeasure(view, schema.MeasureSurvived))
	dead := total - survived
	page.add(Section{
		Heading: "🧾 탑승자 주요 통계 요약",
		Metrics: []Metric{
			{Label: "👥 총 탑승자 수", Value: engine.FormatInt(total) + "명"},
			{Label: "🟢 생존자 수", Value: engine.FormatInt(survived) + "명", Delta: "비율: " + ratio(survived, total)},
			{Label: "🔴 사망자 수", Value: engine.FormatInt(dead) + "명", Delta: "비율: " + ratio(dead, total)},
		},
	})

	bySex := engine.GroupAndAggregate(view, engine.Query{
		GroupBy:     []string{schema.DimSexCategory},
		Aggregation: "sum",
		Order:       []string{features.Male, features.Female},
		DropEmpty:   true,
	}, schema.MeasureSurvived)
	var sexMetrics []Metric
	for _, g := range bySex {
		if g.Key != features.Male && g.Key != features.Female {
			continue
		}
		sexMetrics = append(sexMetrics, Metric{
			Label: sexLabels[g.Key] + " 탑승자",
			Value: engine.FormatInt(g.Count) + "명",
			Delta: fmt.Sprintf("생존 %s명 (%s)", engine.FormatInt(int(g.Value)), ratio(int(g.Value), g.Count)),
		})
	}
	page.add(Section{Heading: "⚖️ 성별 탑승자와 생존자", Metrics: sexMetrics})

	page.add(Section{Heading: "📐 수치형 변수 요약", Metrics: numericSummary(view)})

	sample, err := v.sample(train)
	if err != nil {
		return nil, err
	}
	page.add(Section{
		Heading: "🔍 샘플 데이터 미리보기",
		Text:    fmt.Sprintf("※ 학습 데이터 중 무작위로 추출한 %d개 행을 표시합니다.", len(sample.Rows)),
		Table:   sample,
	})
	return page, nil
}

func (v HomeView) sample(train *features.Table) (*engine.TableData, error) {
	n, seed := v.SampleSize, v.SampleSeed
	if n <= 0 {
		n = 10
	}
	if seed == 0 {
		seed = 42
	}
	perm := rand.New(rand.NewSource(seed)).Perm(train.Len())
	if n > len(perm) {
		n = len(perm)
	}

	res, err := engine.Execute(engine.Query{
		Aggregation: "list",
		Columns:     ListColumns,
	}, train.Subset(perm[:n]).View(), engine.WithSchema(features.Schema()))
	if err != nil {
		return nil, err
	}
	return res.TableData, nil
}

// numericSummary reports mean, median and spread of age and fare; missing
// values are skipped.
func numericSummary(view engine.RecordView) []Metric {
	var out []Metric
	for _, m := range []struct{ key, label, unit string }{
		{schema.MeasureAge, "나이", "세"},
		{schema.MeasureFare, "요금", "$"},
	} {
		values := engine.MeasureValues(view, m.key)
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		mean, std := stat.MeanStdDev(values, nil)
		median := stat.Quantile(0.5, stat.Empirical, values, nil)
		out = append(out,
			Metric{Label: "평균 " + m.label, Value: engine.FormatNumber(engine.RoundTo2(mean)) + m.unit, Delta: "표준편차 " + engine.FormatNumber(engine.RoundTo2(std))},
			Metric{Label: m.label + " 중앙값", Value: engine.FormatNumber(engine.RoundTo2(median)) + m.unit, Delta: fmt.Sprintf("%s명 기준", engine.FormatInt(len(values)))},
		)
	}
	return out
}

var sexLabels = map[string]string{
	features.Male:   "남성",
	features.Female: "여성",
	features.Other:  "기타",
}

var survivedLabels = map[string]string{"0": "사망", "1": "생존"}

func resourceLabel(res dataset.Resource) string {
	switch res {
	case dataset.Train:
		return "학습 데이터"
	case dataset.Test:
		return "테스트 데이터"
	default:
		return "제출 예시"
	}
}

func ratio(part, total int) string {
	if total == 0 {
		return engine.FormatPercent(0)
	}
	return engine.FormatPercent(float64(part) / float64(total))
}
