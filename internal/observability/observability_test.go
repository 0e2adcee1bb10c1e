package observability

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/roboricindustries/sync-events/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = NewLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	invalid := shape.Check(shape.String(2), "too long")
	unknown := shape.Check(shape.Union("t", shape.Object(shape.Field("t", shape.Literal("a")))), map[string]any{"t": "b"})
	require.Error(t, invalid)
	require.Error(t, unknown)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"shape violation", invalid, OutcomeInvalid},
		{"wrapped shape violation", fmt.Errorf("container: %w", invalid), OutcomeInvalid},
		{"unknown variant", unknown, OutcomeUnknownVariant},
		{"anything else", errors.New("unexpected EOF"), OutcomeUndecodable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(validations.WithLabelValues("update", OutcomeUnknownVariant))
	RecordValidation("update", OutcomeUnknownVariant)
	assert.Equal(t, before+1, testutil.ToFloat64(validations.WithLabelValues("update", OutcomeUnknownVariant)))

	RecordRelayPublish("update", "new-session", nil)
	RecordRelayPublish("event", "activity", errors.New("closed"))
	assert.Equal(t, 1.0, testutil.ToFloat64(relayPublished.WithLabelValues("event", "activity", "false")))

	RecordRelayConsume("updates", "ack")
	RecordWarehouseQuery("retention", "mock", 0, nil)
	RecordWarehouseQuery("retention", "warehouse", 30*time.Millisecond, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(warehouseQueries.WithLabelValues("retention", "mock", "true")))
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info", "text")
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestLogger(logger), RequestMetricsMiddleware("test-api"))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("test-api", "GET", "/items/:id", "404")))
	line := buf.String()
	assert.True(t, strings.Contains(line, "level=WARN"), line)
	assert.Contains(t, line, "path=/items/:id")
}
