package views

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Khayman1/titanic-streamlit/filter"
)

// ErrInvalidInput is returned for malformed view parameters.
var ErrInvalidInput = errors.New("invalid input")

// FromParams builds the variant of k described by query parameters, the
// way the dashboard's forms submit them. Missing parameters keep defaults.
func FromParams(k Kind, q url.Values) (View, error) {
	switch k {
	case Passengers:
		tab, err := ParseTab(q.Get("tab"))
		if err != nil {
			return nil, err
		}
		return PassengersView{Tab: tab}, nil

	case Search:
		v := SearchView{Applied: q.Get("applied") != ""}
		if v.Applied {
			v.Criteria = filter.Criteria{
				Sex:      values(q, "sex"),
				Pclass:   values(q, "pclass"),
				AgeGroup: values(q, "age_group"),
				Survived: values(q, "survived"),
			}
		}
		limit, err := intParam(q, "limit", 0)
		if err != nil {
			return nil, err
		}
		v.Limit = limit
		return v, nil

	case Predict:
		in := DefaultPredictInput()
		if s := q.Get("sex"); s != "" {
			in.Sex = strings.ToLower(strings.TrimSpace(s))
		}
		var err error
		if in.Pclass, err = intParam(q, "pclass", in.Pclass); err != nil {
			return nil, err
		}
		if in.Age, err = floatParam(q, "age", in.Age); err != nil {
			return nil, err
		}
		if in.Fare, err = floatParam(q, "fare", in.Fare); err != nil {
			return nil, err
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		return PredictView{Input: in}, nil

	case Survival:
		n, err := intParam(q, "history", 0)
		if err != nil {
			return nil, err
		}
		return SurvivalView{History: n}, nil
	}
	return New(k)
}

// values returns the repeated parameter key. Comma-separated values are
// split so the CLI can pass "male,female".
func values(q url.Values, key string) []string {
	out := []string{}
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidInput, key, raw)
	}
	return n, nil
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidInput, key, raw)
	}
	return v, nil
}
