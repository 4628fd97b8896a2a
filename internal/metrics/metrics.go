// Package metrics exposes Prometheus instrumentation for the recipe catalog.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CompositionsTotal counts recipe create/update calls by outcome.
	CompositionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_compositions_total",
			Help: "Total number of recipe compositions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// LedgerChangesTotal counts favorite and cart membership changes.
	LedgerChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_ledger_changes_total",
			Help: "Total number of favorite/cart membership changes by kind, operation and outcome",
		},
		[]string{"kind", "operation", "outcome"},
	)

	// ShoppingListsTotal counts rendered shopping lists by format.
	ShoppingListsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_lists_total",
			Help: "Total number of shopping lists rendered by format",
		},
		[]string{"format"},
	)

	// HTTPRequestDuration tracks request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome converts an error into the outcome label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordComposition records a recipe create or update.
func RecordComposition(operation string, err error) {
	CompositionsTotal.WithLabelValues(operation, Outcome(err)).Inc()
}

// RecordLedgerChange records a favorite or cart add/remove.
func RecordLedgerChange(kind, operation string, err error) {
	LedgerChangesTotal.WithLabelValues(kind, operation, Outcome(err)).Inc()
}

// RecordShoppingList records a rendered shopping list.
func RecordShoppingList(format string) {
	ShoppingListsTotal.WithLabelValues(format).Inc()
}

// Middleware observes request latency labelled by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
