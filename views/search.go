package views

import (
	"context"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/features"
	"github.com/Khayman1/titanic-streamlit/filter"
	"github.com/Khayman1/titanic-streamlit/schema"
)

// SearchView lists the passengers matching a filter.
type SearchView struct {
	Criteria filter.Criteria
	// Applied is false until the form is submitted; an unsubmitted search
	// selects the full domain.
	Applied bool
	Limit   int // rows shown; 0 => all
}

func (SearchView) Kind() Kind { return Search }

var pclassLabels = map[string]string{"1": "1등석", "2": "2등석", "3": "3등석"}

func (v SearchView) Render(ctx context.Context, d *Data) (*Page, error) {
	page := newPage(Search, "🔎 탑승자 데이터 검색",
		"선택한 조건(성별, 객실 등급, 나이대, 생존 여부)에 따라 탑승자 데이터를 필터링하여 조회할 수 있습니다. "+
			"검색 결과는 아래 표에 반영되며, 총 인원 수도 함께 표시됩니다.")

	crit := v.Criteria
	if !v.Applied {
		crit = filter.FullDomain()
	}
	page.Form = SearchForm(crit)

	train, err := d.Train(ctx)
	if err != nil {
		return nil, err
	}
	result := filter.Apply(train, crit)
	d.logger().Debug("search applied",
		zap.Stringer("criteria", crit),
		zap.Int("matched", result.Len()),
		zap.Int("total", train.Len()),
	)

	res, err := engine.Execute(engine.Query{
		Aggregation: "list",
		Columns:     append(append([]string(nil), ListColumns...), schema.DimAgeGroup),
		Limit:       v.Limit,
	}, result.View(), engine.WithSchema(features.Schema()))
	if err != nil {
		return nil, err
	}

	page.add(Section{Table: res.TableData})
	page.add(Section{Text: filter.Summary(result.Len()), Tone: Success})
	return page, nil
}

// SearchForm describes the four multi-selects with crit pre-selected.
func SearchForm(crit filter.Criteria) *Form {
	return &Form{
		Action: "/views/" + Search.Slug(),
		Submit: "검색",
		Fields: []Field{
			{Name: "applied", Kind: FieldHidden, Value: "1"},
			{Name: "sex", Label: "성별 선택", Kind: FieldMulti, Options: options(features.SexLabels(), sexLabels, crit.Sex)},
			{Name: "pclass", Label: "객실 등급 선택", Kind: FieldMulti, Options: options(filter.PclassValues, pclassLabels, crit.Pclass)},
			{Name: "survived", Label: "생존 여부 선택", Kind: FieldMulti, Options: options(filter.SurvivedValues, survivedLabels, crit.Survived)},
			{Name: "age_group", Label: "나이대 선택", Kind: FieldMulti, Options: options(features.AgeLabels(), nil, crit.AgeGroup)},
		},
	}
}
