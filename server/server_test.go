package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/dataset/datasettest"
	"github.com/Khayman1/titanic-streamlit/filter"
	"github.com/Khayman1/titanic-streamlit/views"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, cache *dataset.Cache) *httptest.Server {
	t.Helper()
	if cache == nil {
		cache = datasettest.NewCache()
	}
	logger := zaptest.NewLogger(t)
	data := views.NewData(cache, logger)
	data.Classifier.Trees = 10
	ts := httptest.NewServer(New(data, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndexRedirectsHome(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, _ := get(t, ts, "/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/views/home", resp.Header.Get("Location"))
}

func TestEveryViewServesHTML(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, k := range views.Kinds() {
		resp, body := get(t, ts, "/views/"+k.Slug())
		assert.Equal(t, http.StatusOK, resp.StatusCode, k.Slug())
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, body, `class="active">`+k.Icon()+" "+k.Label())
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	}
}

func TestChartsAreInlined(t *testing.T) {
	ts := newTestServer(t, nil)
	_, body := get(t, ts, "/views/survival")
	assert.Contains(t, body, "<svg")
	assert.NotContains(t, body, "<?xml")
}

func TestStatusMapping(t *testing.T) {
	ts := newTestServer(t, nil)
	cases := map[string]int{
		"/views/weather":            http.StatusNotFound,
		"/api/views/weather":        http.StatusNotFound,
		"/views/predict?age=abc":    http.StatusBadRequest,
		"/api/views/predict?sex=x":  http.StatusBadRequest,
		"/views/passengers?tab=bad": http.StatusBadRequest,
		"/download/weather":         http.StatusNotFound,
	}
	for path, want := range cases {
		resp, _ := get(t, ts, path)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestUnavailableResourceFailsOnlyItsView(t *testing.T) {
	fsys := datasettest.FS()
	delete(fsys, "test.csv")
	ts := newTestServer(t, dataset.NewCache(fsys, dataset.DefaultFiles()))

	resp, body := get(t, ts, "/views/home")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "resource unavailable")

	resp, _ = get(t, ts, "/api/views/passengers")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, ts, "/download/test")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPISearch(t *testing.T) {
	ts := newTestServer(t, nil)
	crit := filter.FullDomain()
	q := url.Values{
		"applied":   {"1"},
		"sex":       {"female"},
		"pclass":    crit.Pclass,
		"survived":  crit.Survived,
		"age_group": crit.AgeGroup,
	}
	resp, body := get(t, ts, "/api/views/search?"+q.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var page views.Page
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, "search", page.Slug)
	require.Len(t, page.Sections, 2)
	assert.Equal(t, filter.Summary(datasettest.TrainFemale), page.Sections[1].Text)
}

func TestDownloadHasBOM(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts, "/download/train")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="train.csv"`)

	require.True(t, strings.HasPrefix(body, "\ufeff"), "missing BOM")
	assert.Equal(t, readCSV(t, datasettest.Bytes("train.csv")), readCSV(t, []byte(strings.TrimPrefix(body, "\ufeff"))))

	resp, _ = get(t, ts, "/download/gender_submission.csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestSchemaAndHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, ts, "/api/schema")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"age_group"`)

	get(t, ts, "/views/passengers")
	resp, body = get(t, ts, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h health
	require.NoError(t, json.Unmarshal([]byte(body), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Contains(t, h.Loaded, "train")
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t, nil)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestRecoverPanics(t *testing.T) {
	s := New(views.NewData(datasettest.NewCache(), nil), zaptest.NewLogger(t))
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), s.recoverPanics, requestID)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(&dataset.ResourceError{Resource: dataset.Train, Err: errors.New("gone")}))
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("wrap: %w", views.ErrUnknownView)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(views.ErrInvalidInput))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("other")))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(views.NewData(datasettest.NewCache(), nil), zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, Options{ShutdownTimeout: time.Second}) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	http.DefaultClient.CloseIdleConnections()
}
