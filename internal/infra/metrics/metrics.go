package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the prometheus instruments for the monitoring engine.
type Metrics struct {
	Sweeps            prometheus.Counter
	RecordsChecked    prometheus.Counter
	QuoteErrors       *prometheus.CounterVec
	NotificationsSent prometheus.Counter
	PersistenceErrors prometheus.Counter
	SweepDuration     prometheus.Histogram
}

func New(namespace string) *Metrics {
	return &Metrics{
		Sweeps: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "The total number of completed monitor sweeps",
		}),
		RecordsChecked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_checked_total",
			Help:      "The total number of per-record price checks",
		}),
		QuoteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_errors_total",
			Help:      "The total number of failed price-source queries",
		}, []string{"source"}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "The total number of price alerts delivered",
		}),
		PersistenceErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "The total number of failed snapshot writes",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time taken by one full monitor sweep",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener starting", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics listener failed", zap.Error(err))
	}
}
