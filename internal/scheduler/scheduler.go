package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job - периодическая задача; ctx отменяется по таймауту задачи или при остановке
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// New создаёт планировщик; одна задача не запускается повторно, пока не закончилась предыдущая
func New(log *zap.Logger, timeout time.Duration) *Scheduler {
	log = log.Named("scheduler")
	cronLog := cronLogger{log: log.Sugar()}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log:     log,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add регистрирует задачу по cron-выражению из 5 полей
func (s *Scheduler) Add(schedule, name string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop отменяет выполняющиеся задачи и ждёт их завершения или ctx
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger адаптирует zap к cron.Logger
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
