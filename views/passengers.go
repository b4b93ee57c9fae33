package views

import (
	"context"
	"sort"

	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/features"
	"github.com/Khayman1/titanic-streamlit/schema"
)

// PassengersView breaks the passengers down by sex, age, port, fare and
// family size, one tab at a time.
type PassengersView struct {
	Tab Tab
}

func (PassengersView) Kind() Kind { return Passengers }

// sexColors are the pie colors per sex category.
var sexColors = map[string]string{
	features.Male:   "#1083e0",
	features.Female: "#9ec9f4",
	features.Other:  "#bdbdbd",
}

func (v PassengersView) Render(ctx context.Context, d *Data) (*Page, error) {
	page := newPage(Passengers, "🚢 탑승자 분석 대시보드",
		"타이타닉호 탑승자의 성별, 나이대, 탑승 위치, 요금, 가족 동반 여부에 따른 분포를 보여줍니다. "+
			"상단의 탭에서 분석 항목을 선택하세요.")
	for _, t := range Tabs() {
		page.Tabs = append(page.Tabs, Link{
			Label:  t.Label(),
			Href:   "/views/" + Passengers.Slug() + "?tab=" + t.Slug(),
			Active: t == v.Tab,
		})
	}

	train, err := d.Train(ctx)
	if err != nil {
		return nil, err
	}
	view := train.View()

	var sections []Section
	switch v.Tab {
	case EmbarkFare:
		sections, err = embarkFare(view)
	case Family:
		sections, err = family(view)
	default:
		sections, err = distribution(view)
	}
	if err != nil {
		return nil, err
	}
	page.Sections = sections
	return page, nil
}

func distribution(view engine.RecordView) ([]Section, error) {
	// pandas value_counts().sort_index() order
	sexOrder := features.SexLabels()
	sort.Strings(sexOrder)
	pie, err := chartOf(view, engine.Query{
		Visualize: "pie",
		GroupBy:   []string{schema.DimSexCategory},
		Order:     present(view, schema.DimSexCategory, sexOrder),
		Title:     "성별 탑승자 비율",
	})
	if err != nil {
		return nil, err
	}
	if pie != nil {
		colors := make([]string, len(pie.Series[0].Data))
		for i, pt := range pie.Series[0].Data {
			colors[i] = sexColors[pt.Label]
			if colors[i] == "" {
				colors[i] = "#cccccc"
			}
		}
		pie.Colors = colors
	}

	bySex, err := chartOf(view, engine.Query{
		GroupBy:   []string{schema.DimSex},
		SortBy:    "value_desc",
		DropEmpty: true,
		Title:     "성별 탑승자 분포",
		XAxis:     "성별",
		YAxis:     "탑승자 수",
	})
	if err != nil {
		return nil, err
	}

	byAge, err := chartOf(view, engine.Query{
		GroupBy:   []string{schema.DimAgeGroup},
		Order:     features.AgeLabels(),
		Highlight: []string{"20-39세"},
		Title:     "나이대별 탑승자 분포 (결측 포함)",
		XAxis:     "나이대",
		YAxis:     "탑승자 수",
	})
	if err != nil {
		return nil, err
	}

	return []Section{
		{Heading: "🧑‍🤝‍🧑 성별 구성", Chart: pie},
		{
			Heading: "👤 성별 탑승자 수",
			Chart:   bySex,
			Tone:    Info,
			Notes: []string{
				"전체 승객 중 **남성이 가장 많고**, 여성이 그보다 적은 수로 탑승하였습니다.",
				"이는 당대 사회 구조에서 **남성이 주요 이동 주체**였음을 시사합니다.",
				"하지만 생존률은 여성이 훨씬 높으므로, 단순 인원 수만으로 구조 우선 순위를 판단해선 안 됩니다.",
			},
		},
		{
			Heading: "📊 나이대 탑승자 수",
			Chart:   byAge,
			Tone:    Warning,
			Notes: []string{
				"**20–39세** 구간에 가장 많은 승객이 분포되어 있습니다.",
				"이는 경제 활동 인구 및 이민 목적 탑승 가능성을 시사합니다.",
				"**결측치(기타)**도 상당수 존재하므로 주의가 필요합니다.",
			},
		},
	}, nil
}

func embarkFare(view engine.RecordView) ([]Section, error) {
	byPort, err := chartOf(view, engine.Query{
		GroupBy:   []string{schema.DimEmbarked},
		DropEmpty: true,
		SortBy:    "label_asc",
		Title:     "탑승지별 승객 수",
		XAxis:     "탑승 위치",
		YAxis:     "탑승자 수",
	})
	if err != nil {
		return nil, err
	}

	// Fares outside every bucket are left out, as pandas.cut does.
	fareBuckets := features.FareBins.Labels
	byFare, err := chartOf(view, engine.Query{
		GroupBy: []string{schema.DimFareGroup},
		Filters: engine.Selection{schema.DimFareGroup: fareBuckets},
		Order:   fareBuckets,
		Title:   "요금 그룹별 승객 수",
		XAxis:   "요금 구간 ($)",
		YAxis:   "탑승자 수",
	})
	if err != nil {
		return nil, err
	}

	return []Section{
		{
			Heading: "🚏 승객 탑승 위치",
			Chart:   byPort,
			Tone:    Info,
			Notes: []string{
				"**S(Southampton)**: 출발 항구로, 탑승자의 과반수가 이곳에서 승선.",
				"**Q(Queenstown)**: 대부분 3등석 이민자, 생존률 낮음.",
				"**C(Cherbourg)**: 1등석 비중 높아 생존률과 연관될 수 있음.",
			},
		},
		{
			Heading: "💸 요금(Fare) 분포",
			Chart:   byFare,
			Tone:    Info,
			Notes: []string{
				"대부분 승객은 **30달러 이하** 요금을 지불.",
				"이는 **3등석 승객** 비중이 높다는 점을 시사합니다.",
			},
		},
	}, nil
}

func family(view engine.RecordView) ([]Section, error) {
	bySibSp, err := chartOf(view, engine.Query{
		GroupBy: []string{schema.DimSibSp},
		SortBy:  "label_asc",
		Title:   "형제자매/배우자 수",
		XAxis:   "SibSp",
		YAxis:   "탑승자 수",
	})
	if err != nil {
		return nil, err
	}
	byParch, err := chartOf(view, engine.Query{
		GroupBy: []string{schema.DimParch},
		SortBy:  "label_asc",
		Title:   "부모/자녀 수",
		XAxis:   "Parch",
		YAxis:   "탑승자 수",
	})
	if err != nil {
		return nil, err
	}

	alone := engine.CountMeasure(engine.ApplySelection(view, engine.Selection{
		schema.DimSibSp: {"0"},
		schema.DimParch: {"0"},
	}), schema.MeasurePassengerCount)

	return []Section{
		{Heading: "👤 형제자매 / 배우자 수", Chart: bySibSp},
		{Heading: "👶 부모 / 자녀 수", Chart: byParch},
		{
			Metrics: []Metric{{Label: "🧍 혼자 탑승", Value: engine.FormatInt(alone) + "명", Delta: "비율: " + ratio(alone, view.Len())}},
			Tone:    Info,
			Notes: []string{
				"대부분 승객은 **혼자 또는 배우자/형제자매 1명과 함께 탑승**했습니다.",
				"부모/자녀 동반 승객은 비교적 적으며, **어린이 또는 가족 단위 탑승 여부는 생존율과 연관**될 수 있습니다.",
			},
		},
	}, nil
}

// chartOf runs a count chart query and returns its configuration, or nil
// when no record matches.
func chartOf(view engine.RecordView, q engine.Query) (*engine.ChartConfig, error) {
	q.Intent = "chart"
	if q.Aggregation == "" {
		q.Aggregation = "count"
	}
	res, err := engine.Execute(q, view, engine.WithSchema(features.Schema()))
	if err != nil {
		return nil, err
	}
	return res.ChartConfig, nil
}

// present keeps the values of order that occur in view.
func present(view engine.RecordView, dim string, order []string) []string {
	seen := make(map[string]bool)
	for i := 0; i < view.Len(); i++ {
		seen[view.Dimension(i, dim)] = true
	}
	out := make([]string, 0, len(order))
	for _, v := range order {
		if seen[v] {
			out = append(out, v)
		}
	}
	return out
}
