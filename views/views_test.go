package views_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/dataset/datasettest"
	"github.com/Khayman1/titanic-streamlit/filter"
	"github.com/Khayman1/titanic-streamlit/runlog"
	"github.com/Khayman1/titanic-streamlit/views"
)

type memRuns struct {
	mu   sync.Mutex
	runs []runlog.Run
}

func (m *memRuns) Record(_ context.Context, run runlog.Run) (runlog.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = "run-" + string(rune('a'+len(m.runs)))
	m.runs = append(m.runs, run)
	return run, nil
}

func (m *memRuns) Recent(_ context.Context, limit int) ([]runlog.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]runlog.Run, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func newData(t *testing.T) *views.Data {
	t.Helper()
	d := views.NewData(datasettest.NewCache(), zaptest.NewLogger(t))
	d.Classifier.Trees = 10
	return d
}

func render(t *testing.T, d *views.Data, v views.View) *views.Page {
	t.Helper()
	page, err := v.Render(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, page)
	return page
}

func section(t *testing.T, page *views.Page, heading string) views.Section {
	t.Helper()
	for _, s := range page.Sections {
		if s.Heading == heading {
			return s
		}
	}
	t.Fatalf("page %s has no section %q", page.Slug, heading)
	return views.Section{}
}

// ── Kinds ─────────────────────────────────────────────────────────────────────

func TestParseKind(t *testing.T) {
	for _, k := range views.Kinds() {
		got, err := views.ParseKind(k.Slug())
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.NotEmpty(t, k.Label())
		assert.NotEmpty(t, k.Icon())
	}
	_, err := views.ParseKind("nope")
	assert.ErrorIs(t, err, views.ErrUnknownView)
}

func TestParseTab(t *testing.T) {
	tab, err := views.ParseTab("")
	require.NoError(t, err)
	assert.Equal(t, views.Distribution, tab)

	tab, err = views.ParseTab("Family")
	require.NoError(t, err)
	assert.Equal(t, views.Family, tab)

	_, err = views.ParseTab("weather")
	assert.ErrorIs(t, err, views.ErrInvalidInput)
}

func TestNewCoversEveryKind(t *testing.T) {
	for _, k := range views.Kinds() {
		v, err := views.New(k)
		require.NoError(t, err)
		assert.Equal(t, k, v.Kind())
	}
	_, err := views.New(views.Kind(42))
	assert.ErrorIs(t, err, views.ErrUnknownView)
}

// ── Rendering ─────────────────────────────────────────────────────────────────

func TestEveryViewRenders(t *testing.T) {
	d := newData(t)
	for _, k := range views.Kinds() {
		t.Run(k.Slug(), func(t *testing.T) {
			v, err := views.New(k)
			require.NoError(t, err)
			page := render(t, d, v)
			assert.Equal(t, k.Slug(), page.Slug)
			assert.NotEmpty(t, page.Title)
			assert.NotEmpty(t, page.Sections)
			assert.NotEmpty(t, views.Markdown(page))
		})
	}
}

func TestHomeTotals(t *testing.T) {
	page := render(t, newData(t), views.HomeView{})

	totals := section(t, page, "🧾 탑승자 주요 통계 요약")
	require.Len(t, totals.Metrics, 3)
	assert.Equal(t, "25명", totals.Metrics[0].Value)
	assert.Equal(t, "13명", totals.Metrics[1].Value)
	assert.Equal(t, "12명", totals.Metrics[2].Value)

	shapes := section(t, page, "📁 데이터셋 개요")
	require.Len(t, shapes.Metrics, 3)
	assert.Equal(t, "25행", shapes.Metrics[0].Value)
	assert.Equal(t, "12열", shapes.Metrics[0].Delta)

	sample := section(t, page, "🔍 샘플 데이터 미리보기")
	require.NotNil(t, sample.Table)
	assert.Len(t, sample.Table.Rows, 10)
	assert.Len(t, sample.Table.Columns, len(views.ListColumns))
}

func TestHomeSampleIsSeeded(t *testing.T) {
	d := newData(t)
	a := section(t, render(t, d, views.HomeView{SampleSeed: 7}), "🔍 샘플 데이터 미리보기")
	b := section(t, render(t, d, views.HomeView{SampleSeed: 7}), "🔍 샘플 데이터 미리보기")
	assert.Equal(t, a.Table.Rows, b.Table.Rows)
}

func TestPassengersTabs(t *testing.T) {
	d := newData(t)
	for _, tab := range views.Tabs() {
		page := render(t, d, views.PassengersView{Tab: tab})
		require.Len(t, page.Tabs, 3)
		for i, link := range page.Tabs {
			assert.Equal(t, views.Tabs()[i] == tab, link.Active, link.Label)
		}
	}
}

func TestPassengersDistributionPie(t *testing.T) {
	page := render(t, newData(t), views.PassengersView{Tab: views.Distribution})
	pie := section(t, page, "🧑‍🤝‍🧑 성별 구성").Chart
	require.NotNil(t, pie)
	assert.Equal(t, "pie", pie.ChartType)

	counts := map[string]int{}
	for _, pt := range pie.Series[0].Data {
		counts[pt.Label] = pt.Count
	}
	assert.Equal(t, datasettest.TrainMale, counts["male"])
	assert.Equal(t, datasettest.TrainFemale, counts["female"])
	assert.Len(t, pie.Colors, len(pie.Series[0].Data))
}

func TestSurvivalRecordsEvaluation(t *testing.T) {
	d := newData(t)
	runs := &memRuns{}
	d.Runs = runs

	page := render(t, d, views.SurvivalView{})
	acc := section(t, page, "🧠 생존 예측 모델 정확도")
	require.Len(t, acc.Metrics, 4)
	assert.True(t, strings.HasSuffix(acc.Metrics[0].Value, "%"))

	// The evaluation is memoized; a second render records nothing new.
	page = render(t, d, views.SurvivalView{})
	require.Len(t, runs.runs, 1)
	assert.Equal(t, "view", runs.runs[0].Source)
	history := section(t, page, "🗂️ 최근 평가 기록")
	assert.Len(t, history.Table.Rows, 1)

	grouped := section(t, page, "👥 성별 생존/사망 인원 수").Chart
	require.NotNil(t, grouped)
	assert.Equal(t, "grouped_bar", grouped.ChartType)
	require.Len(t, grouped.Series, 2)
	assert.Equal(t, "사망자", grouped.Series[0].Name)
	assert.Equal(t, "생존자", grouped.Series[1].Name)
}

func TestSearch(t *testing.T) {
	d := newData(t)

	all := render(t, d, views.SearchView{})
	assert.Equal(t, filter.Summary(datasettest.TrainRows), all.Sections[1].Text)
	require.NotNil(t, all.Form)
	for _, f := range all.Form.Fields[1:] {
		for _, o := range f.Options {
			assert.True(t, o.Selected, "%s=%s", f.Name, o.Value)
		}
	}

	women := render(t, d, views.SearchView{Applied: true, Criteria: filter.Criteria{
		Sex:      []string{"female"},
		Pclass:   filter.PclassValues,
		AgeGroup: filter.FullDomain().AgeGroup,
		Survived: filter.SurvivedValues,
	}})
	assert.Equal(t, filter.Summary(datasettest.TrainFemale), women.Sections[1].Text)
	assert.Len(t, women.Sections[0].Table.Rows, datasettest.TrainFemale)

	none := render(t, d, views.SearchView{Applied: true})
	assert.Equal(t, filter.Summary(0), none.Sections[1].Text)
	assert.Empty(t, none.Sections[0].Table.Rows)

	limited := render(t, d, views.SearchView{Limit: 3})
	assert.Len(t, limited.Sections[0].Table.Rows, 3)
}

func TestPredict(t *testing.T) {
	d := newData(t)
	page := render(t, d, views.PredictView{Input: views.DefaultPredictInput()})

	result := section(t, page, "예측 결과")
	require.Len(t, result.Metrics, 2)
	assert.Contains(t, []string{"🎉 생존", "☠ 사망"}, result.Metrics[0].Value)

	m1, err := d.Model(context.Background())
	require.NoError(t, err)
	m2, err := d.Model(context.Background())
	require.NoError(t, err)
	assert.Same(t, m1, m2)

	_, err = views.PredictView{Input: views.PredictInput{Sex: "robot", Pclass: 1}}.Render(context.Background(), d)
	assert.ErrorIs(t, err, views.ErrInvalidInput)
}

func TestDownloadLinks(t *testing.T) {
	page := render(t, newData(t), views.DownloadView{})
	require.Len(t, page.Sections, 4)
	for i, res := range dataset.Resources() {
		require.Len(t, page.Sections[i].Links, 1)
		assert.Equal(t, views.DownloadPath(res), page.Sections[i].Links[0].Href)
	}

	sizes := page.Sections[3].Chart
	require.NotNil(t, sizes)
	require.Len(t, sizes.Series, 1)
	byFile := map[string]float64{}
	for _, p := range sizes.Series[0].Data {
		byFile[p.Label] = p.Value
	}
	assert.Equal(t, map[string]float64{
		"train.csv":             datasettest.TrainRows,
		"test.csv":              datasettest.TestRows,
		"gender_submission.csv": datasettest.SubmissionRows,
	}, byFile)
}

// ── Failure isolation ─────────────────────────────────────────────────────────

func TestMissingResourceFailsOnlyItsViews(t *testing.T) {
	fsys := datasettest.FS()
	delete(fsys, "test.csv")
	d := views.NewData(dataset.NewCache(fsys, dataset.DefaultFiles()), zaptest.NewLogger(t))
	d.Classifier.Trees = 10

	_, err := views.HomeView{}.Render(context.Background(), d)
	assert.ErrorIs(t, err, dataset.ErrResourceUnavailable)

	render(t, d, views.PassengersView{})
	render(t, d, views.SearchView{})

	page := render(t, d, views.DownloadView{})
	assert.Empty(t, page.Sections[1].Links)
	assert.Equal(t, views.Warning, page.Sections[1].Tone)
	require.NotNil(t, page.Sections[3].Chart)
	assert.Len(t, page.Sections[3].Chart.Series[0].Data, 2)
}

func TestMissingTrainFailsDataViews(t *testing.T) {
	fsys := datasettest.FS()
	delete(fsys, "train.csv")
	d := views.NewData(dataset.NewCache(fsys, dataset.DefaultFiles()), zaptest.NewLogger(t))

	for _, v := range []views.View{views.PassengersView{}, views.SurvivalView{}, views.SearchView{}} {
		_, err := v.Render(context.Background(), d)
		assert.ErrorIs(t, err, dataset.ErrResourceUnavailable, v.Kind().Slug())
	}
}

// ── Memoization ───────────────────────────────────────────────────────────────

func TestDataRefreshesAfterInvalidation(t *testing.T) {
	d := newData(t)
	ctx := context.Background()

	a, err := d.Train(ctx)
	require.NoError(t, err)
	b, err := d.Train(ctx)
	require.NoError(t, err)
	assert.Same(t, a, b)

	d.Cache.Invalidate(dataset.Train)
	c, err := d.Train(ctx)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, a.Len(), c.Len())
}

// ── Params ────────────────────────────────────────────────────────────────────

func TestFromParams(t *testing.T) {
	v, err := views.FromParams(views.Passengers, url.Values{"tab": {"embark-fare"}})
	require.NoError(t, err)
	assert.Equal(t, views.PassengersView{Tab: views.EmbarkFare}, v)

	v, err = views.FromParams(views.Search, url.Values{
		"applied": {"1"},
		"sex":     {"male,female"},
		"pclass":  {"1", "3"},
	})
	require.NoError(t, err)
	search := v.(views.SearchView)
	assert.True(t, search.Applied)
	assert.Equal(t, []string{"male", "female"}, search.Criteria.Sex)
	assert.Equal(t, []string{"1", "3"}, search.Criteria.Pclass)
	assert.Empty(t, search.Criteria.AgeGroup)

	v, err = views.FromParams(views.Search, url.Values{})
	require.NoError(t, err)
	assert.False(t, v.(views.SearchView).Applied)

	v, err = views.FromParams(views.Predict, url.Values{"sex": {"female"}, "age": {"8"}})
	require.NoError(t, err)
	assert.Equal(t, views.PredictInput{Sex: "female", Pclass: 1, Age: 8, Fare: 32}, v.(views.PredictView).Input)

	for _, q := range []url.Values{
		{"age": {"abc"}},
		{"age": {"NaN"}},
		{"age": {"130"}},
		{"pclass": {"4"}},
		{"fare": {"-1"}},
	} {
		_, err := views.FromParams(views.Predict, q)
		assert.ErrorIs(t, err, views.ErrInvalidInput, q.Encode())
	}

	_, err = views.FromParams(views.Passengers, url.Values{"tab": {"x"}})
	assert.ErrorIs(t, err, views.ErrInvalidInput)
}

func TestMarkdownPie(t *testing.T) {
	page := render(t, newData(t), views.SurvivalView{})
	md := views.Markdown(page)
	assert.Contains(t, md, "# 📊 생존 여부 통계 및 시각 자료")
	assert.Contains(t, md, "(13명)")
	assert.Contains(t, md, "| 생존 |")
}
