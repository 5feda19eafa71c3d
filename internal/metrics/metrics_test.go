package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusTeapot, "pong") })
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/ping/:id", "418"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/ping/:id", "418"))
	assert.Equal(t, before+1, after)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "foxtip_http_requests_total")
}

func TestRecordTipGeneration(t *testing.T) {
	ok := testutil.ToFloat64(tipGenerations.WithLabelValues(ResultSuccess))
	failed := testutil.ToFloat64(tipGenerations.WithLabelValues(ResultFailure))

	RecordTipGeneration(true, time.Second)
	RecordTipGeneration(false, time.Second)
	RecordTipGeneration(false, time.Second)

	assert.Equal(t, ok+1, testutil.ToFloat64(tipGenerations.WithLabelValues(ResultSuccess)))
	assert.Equal(t, failed+2, testutil.ToFloat64(tipGenerations.WithLabelValues(ResultFailure)))
}
