package views

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/schema"
)

// survivalColors are {dead, survived}.
var survivalColors = []string{"#ff4d4d", "#48db6b"}

// SurvivalView compares survivors and victims and reports the classifier's
// hold-out accuracy.
type SurvivalView struct {
	History int // recent runs to list; 0 => 5
}

func (SurvivalView) Kind() Kind { return Survival }

func (v SurvivalView) Render(ctx context.Context, d *Data) (*Page, error) {
	page := newPage(Survival, "📊 생존 여부 통계 및 시각 자료", "")

	train, err := d.Train(ctx)
	if err != nil {
		return nil, err
	}
	view := train.View()

	pie, err := chartOf(view, engine.Query{
		Visualize: "pie",
		GroupBy:   []string{schema.DimSurvived},
		Order:     []string{"0", "1"},
		DropEmpty: true,
		Labels:    survivedLabels,
		Title:     "전체 생존 비율",
	})
	if err != nil {
		return nil, err
	}
	if pie != nil {
		pie.Colors = survivalColors
	}
	rate := engine.AvgMeasure(view, schema.MeasureSurvived)
	page.add(Section{
		Heading: "✅ 생존자 / 사망자 수",
		Chart:   pie,
		Tone:    Info,
		Notes: []string{
			"전체적으로 사망자가 생존자보다 많습니다.",
			fmt.Sprintf("약 %s만이 생존했으며, 이는 객실 등급, 성별, 나이와 밀접한 관련이 있습니다.", engine.FormatPercent(rate)),
		},
	})

	bySex, err := survivalBars(view, schema.DimSex, "성별에 따른 생존/사망 인원 수", "성별")
	if err != nil {
		return nil, err
	}
	page.add(Section{
		Heading: "👥 성별 생존/사망 인원 수",
		Chart:   bySex,
		Tone:    Info,
		Notes: []string{
			"여성 생존률이 남성보다 압도적으로 높습니다.",
			"이는 '여성과 어린이 우선 구조' 규칙의 영향일 수 있습니다.",
		},
	})

	byClass, err := survivalBars(view, schema.DimPclass, "객실 등급(Pclass)에 따른 생존/사망 인원 수", "객실 등급")
	if err != nil {
		return nil, err
	}
	page.add(Section{
		Heading: "🎟️ 객실 등급별 생존/사망 인원 수",
		Chart:   byClass,
		Tone:    Info,
		Notes: []string{
			"1등석 탑승자는 높은 생존률을 보였으며, 3등석은 생존률이 매우 낮았습니다.",
			"객실 등급은 사회적 계층과 구조 우선순위에 영향을 주는 중요한 요소입니다.",
		},
	})

	report, err := d.Evaluation(ctx)
	if err != nil {
		return nil, err
	}
	accuracy := fmt.Sprintf("%.2f%%", report.Accuracy*100)
	page.add(Section{
		Heading: "🧠 생존 예측 모델 정확도",
		Metrics: []Metric{
			{Label: "🎯 예측 정확도", Value: accuracy},
			{Label: "정밀도", Value: engine.FormatPercent(report.Precision)},
			{Label: "재현율", Value: engine.FormatPercent(report.Recall)},
			{Label: "F1", Value: fmt.Sprintf("%.3f", report.F1)},
		},
		Tone: Success,
		Text: fmt.Sprintf("이 모델은 탑승자의 %s 변수만으로 타이타닉 탑승자의 생존 여부를 약 **%s** 정확도로 예측하였습니다. "+
			"(학습 %s명, 검증 %s명, 트리 %d개, seed %d)",
			featureList(report.Features), accuracy,
			engine.FormatInt(report.TrainSize), engine.FormatInt(report.TestSize), report.Trees, report.Seed),
		Notes: []string{
			"**성별**: 여성이 남성보다 생존률이 높다는 사실을 반영",
			"**객실 등급**: 1등석 승객이 구조 우선순위에 있었음을 반영",
			"단순한 변수만으로도 예측 정확도가 높다는 것은 **탑승자의 생존에 성별과 계층이 큰 영향을 미쳤다**는 해석도 가능합니다.",
		},
	})

	if history := v.history(ctx, d); history != nil {
		page.add(*history)
	}
	return page, nil
}

func survivalBars(view engine.RecordView, dim, title, xAxis string) (*engine.ChartConfig, error) {
	cfg, err := chartOf(view, engine.Query{
		GroupBy:      []string{dim, schema.DimSurvived},
		DropEmpty:    true,
		SortBy:       "label_asc",
		SeriesOrder:  []string{"0", "1"},
		SeriesLabels: map[string]string{"0": "사망자", "1": "생존자"},
		Title:        title,
		XAxis:        xAxis,
		YAxis:        "명수",
	})
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		cfg.Colors = survivalColors
	}
	return cfg, nil
}

// history lists recent evaluation runs. A failing store only costs the
// section.
func (v SurvivalView) history(ctx context.Context, d *Data) *Section {
	limit := v.History
	if limit <= 0 {
		limit = 5
	}
	runs, err := d.RecentRuns(ctx, limit)
	if err != nil {
		d.logger().Warn("failed to list runs", zap.Error(err))
		return nil
	}
	if len(runs) == 0 {
		return nil
	}

	table := &engine.TableData{
		Title: "최근 평가 기록",
		Columns: []engine.Column{
			{Key: "created_at", Label: "시각", Type: "text", Align: "left"},
			{Key: "feature_set", Label: "특성", Type: "text", Align: "left"},
			{Key: "source", Label: "실행", Type: "text", Align: "left"},
			{Key: "accuracy", Label: "정확도", Type: "number", Align: "right"},
			{Key: "f1", Label: "F1", Type: "number", Align: "right"},
		},
	}
	for _, r := range runs {
		table.Rows = append(table.Rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.FeatureSet,
			r.Source,
			fmt.Sprintf("%.2f%%", r.Accuracy*100),
			fmt.Sprintf("%.3f", r.F1),
		})
	}
	return &Section{Heading: "🗂️ 최근 평가 기록", Table: table}
}

var featureNames = map[string]string{
	"Sex":    "성별(`Sex`)",
	"Pclass": "객실 등급(`Pclass`)",
	"SibSp":  "형제자매/배우자 수(`SibSp`)",
	"Parch":  "부모/자녀 수(`Parch`)",
	"Fare":   "요금(`Fare`)",
	"Age":    "나이(`Age`)",
}

func featureList(cols []string) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = featureNames[c]
		if names[i] == "" {
			names[i] = c
		}
	}
	return strings.Join(names, ", ")
}
