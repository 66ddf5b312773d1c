// Package metrics exposes animation and command counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stvenmobile/sparky/internal/face"
	"github.com/stvenmobile/sparky/internal/surface"
)

// Metrics holds every collector. It implements face.Observer.
type Metrics struct {
	Frames           prometheus.Counter
	FrameDuration    prometheus.Histogram
	DrawCalls        *prometheus.CounterVec
	GazeTransitions  *prometheus.CounterVec
	Blinks           *prometheus.CounterVec
	MouthSwaps       prometheus.Counter
	Commands         *prometheus.CounterVec
	CommandConnected prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Frames: f.NewCounter(
			prometheus.CounterOpts{
				Name: "sparky_frames_total",
				Help: "Total number of animation frames rendered",
			},
		),
		FrameDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sparky_frame_duration_seconds",
				Help:    "Time spent inside one face update",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		DrawCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparky_draw_calls_total",
				Help: "Surface draw calls by primitive",
			},
			[]string{"op"},
		),
		GazeTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparky_gaze_transitions_total",
				Help: "Gaze state transitions by target state",
			},
			[]string{"to"},
		),
		Blinks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparky_blinks_total",
				Help: "Blinks started by eye",
			},
			[]string{"eye"},
		),
		MouthSwaps: f.NewCounter(
			prometheus.CounterOpts{
				Name: "sparky_mouth_swaps_total",
				Help: "Talk frames selected",
			},
		),
		Commands: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparky_commands_total",
				Help: "Commands received by topic and outcome",
			},
			[]string{"topic", "result"},
		),
		CommandConnected: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "sparky_command_connected",
				Help: "1 while the command websocket is connected",
			},
		),
	}
}

func (m *Metrics) GazeTransition(_, to face.GazeMode) { m.GazeTransitions.WithLabelValues(to.String()).Inc() }
func (m *Metrics) Blink(side face.Side)               { m.Blinks.WithLabelValues(side.String()).Inc() }
func (m *Metrics) MouthSwap(int)                      { m.MouthSwaps.Inc() }

// ObserveFrame records one update that took d.
func (m *Metrics) ObserveFrame(d time.Duration) {
	m.Frames.Inc()
	m.FrameDuration.Observe(d.Seconds())
}

// Command counts one command on topic; ok is false when it was rejected.
func (m *Metrics) Command(topic string, ok bool) {
	result := "applied"
	if !ok {
		result = "rejected"
	}
	m.Commands.WithLabelValues(topic, result).Inc()
}

// SetConnected reports the command link state.
func (m *Metrics) SetConnected(up bool) {
	if up {
		m.CommandConnected.Set(1)
		return
	}
	m.CommandConnected.Set(0)
}

// instrumented counts draw calls before forwarding them.
type instrumented struct {
	surface.Surface
	fillRect, fillCircle, drawCircle, hline prometheus.Counter
}

// InstrumentSurface wraps s so every draw call is counted by primitive.
func InstrumentSurface(s surface.Surface, m *Metrics) surface.Surface {
	return &instrumented{
		Surface:    s,
		fillRect:   m.DrawCalls.WithLabelValues("fill_rect"),
		fillCircle: m.DrawCalls.WithLabelValues("fill_circle"),
		drawCircle: m.DrawCalls.WithLabelValues("draw_circle"),
		hline:      m.DrawCalls.WithLabelValues("hline"),
	}
}

func (s *instrumented) FillRect(x, y, w, h int, c surface.Color) {
	s.fillRect.Inc()
	s.Surface.FillRect(x, y, w, h, c)
}

func (s *instrumented) FillCircle(x, y, r int, c surface.Color) {
	s.fillCircle.Inc()
	s.Surface.FillCircle(x, y, r, c)
}

func (s *instrumented) DrawCircle(x, y, r int, c surface.Color) {
	s.drawCircle.Inc()
	s.Surface.DrawCircle(x, y, r, c)
}

func (s *instrumented) HLine(x, y, w int, c surface.Color) {
	s.hline.Inc()
	s.Surface.HLine(x, y, w, c)
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	return serve(ctx, ln, g, log)
}

func serve(ctx context.Context, ln net.Listener, g prometheus.Gatherer, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("Metrics endpoint listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
