package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roboricindustries/sync-events/internal/observability"
)

const serviceName = "metrics-api"

// NewRouter builds the metrics API: health, metric lookups and the
// prometheus scrape endpoint.
func NewRouter(svc *Service, logger *slog.Logger) *gin.Engine {
	observability.RegisterMetrics()
	if logger == nil {
		logger = observability.Discard()
	}

	r := gin.New()
	r.Use(gin.Recovery(), observability.RequestLogger(logger), observability.RequestMetricsMiddleware(serviceName))
	RegisterRoutes(r, svc)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func RegisterRoutes(r gin.IRouter, svc *Service) {
	started := time.Now()

	r.GET("/health", func(c *gin.Context) {
		source := SourceWarehouse
		if svc.Mock() {
			source = SourceMock
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"source":  source,
			"uptime":  time.Since(started).Round(time.Second).String(),
		})
	})

	r.GET("/api/metrics/:name", func(c *gin.Context) {
		days := svc.DefaultDays()
		if raw, ok := c.GetQuery("days"); ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
				return
			}
			days = n
		}

		res, err := svc.Get(c.Request.Context(), Name(c.Param("name")), days)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, res)
		case errors.Is(err, ErrUnknownMetric):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "metrics": Names()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "metric query failed", "detail": err.Error()})
		}
	})
}
