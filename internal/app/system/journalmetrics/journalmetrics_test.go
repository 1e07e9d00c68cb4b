package journalmetrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aiesociety/aiesweb/internal/app/system/journalmetrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const entryJSON = `{"serial-metadata-response":{"entry":[{
	"dc:title":"Computers & Education",
	"prism:issn":"0360-1315",
	"prism:eIssn":"1873-782X",
	"dc:publisher":"Elsevier Ltd",
	"SJRList":{"SJR":[{"@year":"2023","$":"3.651"}]},
	"SNIPList":{"SNIP":[{"@year":"2023","$":"3.932"}]},
	"citeScoreYearInfoList":{"citeScoreCurrentMetric":"23.8","citeScoreCurrentMetricYear":"2023"}
}]}}`

type recorder struct {
	mu    sync.Mutex
	views []string
	query []string
}

func server(t *testing.T, rec *recorder, handle func(view string) (int, string)) *journalmetrics.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-ELS-APIKey"))
		view := r.URL.Query().Get("view")
		rec.mu.Lock()
		rec.views = append(rec.views, view)
		rec.query = append(rec.query, r.URL.RawQuery)
		rec.mu.Unlock()
		status, body := handle(view)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return journalmetrics.New("test-key", srv.URL, zap.NewNop())
}

func TestSearch_EnhancedSuccess(t *testing.T) {
	rec := &recorder{}
	c := server(t, rec, func(string) (int, string) { return http.StatusOK, entryJSON })

	m, err := c.Search(context.Background(), "Computers & Education")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Computers & Education", m.Title)
	assert.Equal(t, "1873-782X", m.EISSN)
	require.NotNil(t, m.SJR)
	assert.InDelta(t, 3.651, *m.SJR, 1e-9)
	require.NotNil(t, m.CiteScore)
	assert.InDelta(t, 23.8, *m.CiteScore, 1e-9)
	assert.Equal(t, "2023", m.SNIPYear)
	assert.Equal(t, journalmetrics.ViewEnhanced, m.View)
	assert.Equal(t, []string{journalmetrics.ViewEnhanced}, rec.views)
	assert.Contains(t, rec.query[0], "title=Computers")
}

func TestSearch_AuthorizationFallsBackToStandardOnce(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		rec := &recorder{}
		c := server(t, rec, func(view string) (int, string) {
			if view == journalmetrics.ViewEnhanced {
				return status, `{"service-error":{"status":{"statusCode":"AUTHORIZATION_ERROR"}}}`
			}
			return http.StatusOK, entryJSON
		})

		m, err := c.Search(context.Background(), "Computers & Education")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, journalmetrics.ViewStandard, m.View)
		assert.Equal(t, []string{journalmetrics.ViewEnhanced, journalmetrics.ViewStandard}, rec.views)
	}
}

func TestSearch_FallbackFailureIsNotRetriedAgain(t *testing.T) {
	rec := &recorder{}
	c := server(t, rec, func(string) (int, string) { return http.StatusUnauthorized, `{}` })

	_, err := c.Search(context.Background(), "anything")
	var se *journalmetrics.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Len(t, rec.views, 2)
}

func TestSearch_NotFoundAndInvalidReturnNil(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadRequest} {
		rec := &recorder{}
		c := server(t, rec, func(string) (int, string) { return status, `{}` })
		m, err := c.Search(context.Background(), "no such journal")
		assert.NoError(t, err)
		assert.Nil(t, m)
	}

	rec := &recorder{}
	c := server(t, rec, func(string) (int, string) {
		return http.StatusOK, `{"serial-metadata-response":{"entry":[{"error":"Result set was empty"}]}}`
	})
	m, err := c.Search(context.Background(), "empty")
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestSearch_OtherStatusIsError(t *testing.T) {
	rec := &recorder{}
	c := server(t, rec, func(string) (int, string) { return http.StatusTooManyRequests, `quota` })
	m, err := c.Search(context.Background(), "x")
	assert.Nil(t, m)
	var se *journalmetrics.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.Len(t, rec.views, 1)
}

func TestSearch_ISSNQuery(t *testing.T) {
	rec := &recorder{}
	c := server(t, rec, func(string) (int, string) { return http.StatusOK, entryJSON })
	_, err := c.Search(context.Background(), "0360-1315")
	require.NoError(t, err)
	assert.Contains(t, rec.query[0], "issn=03601315")
}

func TestSearch_BlankQueryAndMissingKey(t *testing.T) {
	m, err := journalmetrics.New("k", "http://127.0.0.1:0", zap.NewNop()).Search(context.Background(), "  ")
	assert.NoError(t, err)
	assert.Nil(t, m)

	_, err = journalmetrics.New("", "", zap.NewNop()).Search(context.Background(), "x")
	assert.Error(t, err)
}
