// Package jobs corre las tareas periódicas del servicio sobre robfig/cron.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kennel-exchange/internal/platform/logger"
	"kennel-exchange/internal/platform/metrics"
)

const defaultJobTimeout = 10 * time.Minute

// Func es el cuerpo de un job. ctx vence a los defaultJobTimeout.
type Func func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewScheduler(log *zap.Logger, m *metrics.Metrics) *Scheduler {
	log = logger.OrNop(log).Named("jobs")
	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     log,
		metrics: m,
		timeout: defaultJobTimeout,
	}
}

// Add registra fn con una expresión cron estándar (5 campos) o "@every 5m".
func (s *Scheduler) Add(name, spec string, fn Func) error {
	_, err := s.cron.AddFunc(spec, s.wrap(name, fn))
	if err != nil {
		return fmt.Errorf("job %s: bad schedule %q: %w", name, spec, err)
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop no corta jobs en curso; el ctx devuelto termina cuando acaban.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

func (s *Scheduler) wrap(name string, fn Func) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		result := "ok"
		if err != nil {
			result = "error"
			s.log.Error("job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
		} else {
			s.log.Debug("job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
		}
		if s.metrics != nil {
			s.metrics.JobRuns.WithLabelValues(name, result).Inc()
		}
	}
}

// cronLogger adapta zap al logger de cron.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
