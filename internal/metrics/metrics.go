package metrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/multierr"
)

const (
	namespace                        = "stately"
	defaultMetricsHeartbeatFrequency = 1 * time.Minute
)

var (
	ProcessStart = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "process_start_timestamp_seconds",
		Help:      "Timestamp of start of process",
	})

	Heartbeat = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "heartbeat_timestamp_seconds",
		Help:      "Continuous heartbeat",
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total amount of errors",
	}, []string{"machine", "error"})

	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total amount of requests delegated to the current state",
	}, []string{"machine"})

	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total amount of state transitions",
	}, []string{"machine", "from", "to"})

	State = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "state",
		Help:      "Captures the current state, 1 for the active state",
	}, []string{"machine", "state"})

	StateChangeTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "state_change_timestamp_seconds",
		Help:      "Timestamp of the last state change",
	}, []string{"machine"})
)

func init() {
	ProcessStart.SetToCurrentTime()
	Heartbeat.SetToCurrentTime()
}

type MetricsServer struct {
	address   string
	heartbeat time.Duration
}

type MetricsServerOpts func(*MetricsServer) error

func WithHeartbeatFrequency(frequency time.Duration) MetricsServerOpts {
	return func(s *MetricsServer) error {
		if frequency <= 0 {
			return fmt.Errorf("heartbeat frequency must be positive, got %v", frequency)
		}
		s.heartbeat = frequency
		return nil
	}
}

func New(address string, opts ...MetricsServerOpts) (*MetricsServer, error) {
	if len(address) == 0 {
		return nil, errors.New("empty address provided")
	}

	w := &MetricsServer{
		address:   address,
		heartbeat: defaultMetricsHeartbeatFrequency,
	}

	var errs error
	for _, opt := range opts {
		if err := opt(w); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return w, errs
}

func (s *MetricsServer) StartServer(ctx context.Context, wg *sync.WaitGroup) error {
	defer wg.Done()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := http.Server{
		Addr:              s.address,
		Handler:           mux,
		ReadTimeout:       1 * time.Second,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting metrics server", "address", s.address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("can not start metrics server: %w", err)
		}
	}()

	heartbeatTimer := time.NewTicker(s.heartbeat)
	defer heartbeatTimer.Stop()

	for {
		select {
		case <-heartbeatTimer.C:
			Heartbeat.SetToCurrentTime()
		case <-ctx.Done():
			slog.Info("Stopping metrics server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err := <-errChan:
			return err
		}
	}
}

// StartMetricsWriter dumps the metrics to path once a minute. The last dump happens
// after ctx is cancelled, so short runs still leave their final numbers behind.
func StartMetricsWriter(ctx context.Context, wg *sync.WaitGroup, path string) {
	defer wg.Done()
	ticker := time.NewTicker(defaultMetricsHeartbeatFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			Heartbeat.SetToCurrentTime()
			if err := WriteMetrics(path); err != nil {
				slog.Error("Error dumping metrics", "err", err)
			}
		case <-ctx.Done():
			Heartbeat.SetToCurrentTime()
			if err := WriteMetrics(path); err != nil {
				slog.Error("Error dumping metrics", "err", err)
			}
			return
		}
	}
}

func WriteMetrics(metricsFile string) error {
	metrics, err := dumpMetrics(prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	tmpFile := fmt.Sprintf("%s.tmp", metricsFile)
	if err := os.WriteFile(tmpFile, []byte(metrics), 0644); err != nil { //nolint G306
		return fmt.Errorf("error creating file: %w", err)
	}
	return os.Rename(tmpFile, metricsFile)
}

func dumpMetrics(gatherer prometheus.Gatherer) (string, error) {
	var buf = &bytes.Buffer{}
	enc := expfmt.NewEncoder(buf, expfmt.NewFormat(expfmt.TypeTextPlain))

	families, err := gatherer.Gather()
	if err != nil {
		return "", err
	}

	for _, f := range families {
		// only our own families, the go and process collectors are exported by node_exporter already
		if strings.HasPrefix(f.GetName(), namespace) {
			if err := enc.Encode(f); err != nil {
				slog.Warn("could not encode metric", "err", err.Error())
			}
		}
	}

	return buf.String(), nil
}
