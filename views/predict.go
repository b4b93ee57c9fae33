package views

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/features"
)

// PredictInput is the prediction form.
type PredictInput struct {
	Sex    string  `json:"sex"`
	Pclass int     `json:"pclass"`
	Age    float64 `json:"age"`
	Fare   float64 `json:"fare"`
}

// DefaultPredictInput is the form's initial state.
func DefaultPredictInput() PredictInput {
	return PredictInput{Sex: features.Male, Pclass: 1, Age: 25, Fare: 32}
}

// Validate checks the ranges the form allows.
func (in PredictInput) Validate() error {
	switch {
	case in.Sex != features.Male && in.Sex != features.Female:
		return fmt.Errorf("%w: sex must be male or female, got %q", ErrInvalidInput, in.Sex)
	case in.Pclass < 1 || in.Pclass > 3:
		return fmt.Errorf("%w: pclass must be 1, 2 or 3, got %d", ErrInvalidInput, in.Pclass)
	case math.IsNaN(in.Age) || math.IsNaN(in.Fare) || math.IsInf(in.Fare, 0):
		return fmt.Errorf("%w: age and fare must be finite numbers", ErrInvalidInput)
	case in.Age < 0 || in.Age > 100:
		return fmt.Errorf("%w: age must be within [0, 100], got %v", ErrInvalidInput, in.Age)
	case in.Fare < 0:
		return fmt.Errorf("%w: fare must not be negative, got %v", ErrInvalidInput, in.Fare)
	}
	return nil
}

// Passenger converts the form into a passenger record.
func (in PredictInput) Passenger() dataset.Passenger {
	return dataset.Passenger{
		Sex:    in.Sex,
		Pclass: in.Pclass,
		Age:    dataset.Float(in.Age),
		Fare:   dataset.Float(in.Fare),
	}
}

// PredictView predicts survival for one hypothetical passenger.
type PredictView struct {
	Input PredictInput
}

func (PredictView) Kind() Kind { return Predict }

func (v PredictView) Render(ctx context.Context, d *Data) (*Page, error) {
	in := v.Input
	if err := in.Validate(); err != nil {
		return nil, err
	}

	page := newPage(Predict, "🚢 탑승자 생존 예측", "아래 정보를 입력하면 생존 여부를 예측합니다.")
	page.Form = PredictForm(in)

	page.add(Section{
		Heading: "입력된 데이터",
		Table: &engine.TableData{
			Columns: []engine.Column{
				{Key: "pclass", Label: "Pclass", Type: "number", Align: "right"},
				{Key: "sex", Label: "Sex", Type: "text", Align: "left"},
				{Key: "age", Label: "Age", Type: "number", Align: "right"},
				{Key: "fare", Label: "Fare", Type: "number", Align: "right"},
			},
			Rows: [][]string{{
				strconv.Itoa(in.Pclass), in.Sex,
				engine.FormatNumber(in.Age), engine.FormatNumber(in.Fare),
			}},
		},
	})

	model, err := d.Model(ctx)
	if err != nil {
		return nil, err
	}
	pred := model.PredictPassenger(in.Passenger())

	verdict, tone := "☠ 사망", Warning
	if pred.Survived {
		verdict, tone = "🎉 생존", Success
	}
	page.add(Section{
		Heading: "예측 결과",
		Metrics: []Metric{
			{Label: "예측", Value: verdict},
			{Label: "생존 확률", Value: engine.FormatPercent(pred.Probability)},
		},
		Text: fmt.Sprintf("예측 결과: **%s**", verdict),
		Tone: tone,
	})
	return page, nil
}

// PredictForm describes the form inputs with in pre-filled.
func PredictForm(in PredictInput) *Form {
	pclass := strconv.Itoa(in.Pclass)
	return &Form{
		Action: "/views/" + Predict.Slug(),
		Submit: "예측하기",
		Fields: []Field{
			{Name: "sex", Label: "성별", Kind: FieldSelect, Value: in.Sex,
				Options: options([]string{features.Male, features.Female}, sexLabels, []string{in.Sex})},
			{Name: "pclass", Label: "객실 등급 (1=1등석, 3=3등석)", Kind: FieldSelect, Value: pclass,
				Options: options([]string{"1", "2", "3"}, pclassLabels, []string{pclass})},
			{Name: "age", Label: "나이", Kind: FieldNumber, Value: engine.FormatNumber(in.Age), Min: "0", Max: "100", Step: "1"},
			{Name: "fare", Label: "운임 요금", Kind: FieldNumber, Value: engine.FormatNumber(in.Fare), Min: "0", Step: "0.01"},
		},
	}
}
