package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// SchedulerState is the lifecycle position of a Scheduler.
type SchedulerState int

const (
	// StateUninitialized means startup systems have not run yet.
	StateUninitialized SchedulerState = iota
	// StateRunning means startup is done and ticks run update systems.
	StateRunning
)

func (s SchedulerState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("SchedulerState(%d)", int(s))
	}
}

// SchedulerStats provides statistics about update system execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (st *systemStatsInternal) record(d time.Duration) {
	st.executionCount++
	st.lastDuration = d
	st.totalDuration += d
	st.minDuration = min(st.minDuration, d)
	st.maxDuration = max(st.maxDuration, d)
}

// storageBinder is implemented by Query and Singleton.
type storageBinder interface {
	Init(storage *Storage)
}

type queryExecutor interface {
	Execute()
}

type resourceHandle interface {
	Exists() bool
	resourceType() reflect.Type
}

type registeredSystem struct {
	system    System
	name      string
	queries   []queryExecutor
	resources []resourceHandle
	stats     systemStatsInternal
}

// validate checks that every resource the system declares exists. It runs
// before every pass since resources can be removed between ticks.
func (r *registeredSystem) validate() error {
	for _, res := range r.resources {
		if !res.Exists() {
			return fmt.Errorf("%w: %s required by %s", ErrResourceNotFound, res.resourceType(), r.name)
		}
	}
	return nil
}

func (r *registeredSystem) run(frame *UpdateFrame) time.Duration {
	start := time.Now()
	for _, q := range r.queries {
		q.Execute()
	}
	r.system.Execute(frame)
	return time.Since(start)
}

// Scheduler runs startup systems once, then update systems once per tick, each
// list in registration order. Everything happens on the calling goroutine.
type Scheduler struct {
	storage *Storage
	startup []*registeredSystem
	systems []*registeredSystem
	state   SchedulerState
	clock   *Singleton[Time]
	logger  *zap.Logger
}

// NewScheduler creates a scheduler for storage and installs the Time resource.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
		clock:   NewSingleton[Time](storage),
		logger:  zap.NewNop(),
	}
}

// SetLogger replaces the scheduler's logger. A nil logger disables logging.
func (s *Scheduler) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// State returns the lifecycle state.
func (s *Scheduler) State() SchedulerState {
	return s.state
}

// Storage returns the storage the scheduler drives.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// RegisterStartup adds a system to run once, before the first tick.
// It panics once the scheduler is running.
func (s *Scheduler) RegisterStartup(system System) {
	if s.state == StateRunning {
		panic("ecs: startup system registered after scheduler started")
	}
	s.startup = append(s.startup, s.bind(system))
}

// Register adds a system to run every tick and binds its Query and
// Singleton fields.
func (s *Scheduler) Register(system System) {
	r := s.bind(system)
	r.stats.minDuration = time.Duration(1<<63 - 1)
	s.systems = append(s.systems, r)
}

func (s *Scheduler) bind(system System) *registeredSystem {
	r := &registeredSystem{system: system, name: systemName(system)}

	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct || !value.CanAddr() {
		return r
	}

	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		binder, ok := field.Addr().Interface().(storageBinder)
		if !ok {
			continue
		}
		binder.Init(s.storage)

		if q, ok := binder.(queryExecutor); ok {
			r.queries = append(r.queries, q)
		}
		if res, ok := binder.(resourceHandle); ok {
			r.resources = append(r.resources, res)
		}
	}

	return r
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// Startup runs the startup systems and moves the scheduler to StateRunning.
// It does nothing once the scheduler is running. A startup system whose
// resources are missing aborts startup with ErrResourceNotFound before any
// startup system runs.
func (s *Scheduler) Startup() error {
	if s.state == StateRunning {
		return nil
	}

	for _, r := range s.startup {
		if err := r.validate(); err != nil {
			s.logger.Error("startup aborted", zap.String("system", r.name), zap.Error(err))
			return err
		}
	}

	frame := newUpdateFrame(0, s.storage)
	for _, r := range s.startup {
		d := r.run(frame)
		s.logger.Debug("startup system done", zap.String("system", r.name), zap.Duration("took", d))
	}
	frame.Commands.Flush(s.storage)
	s.state = StateRunning

	s.logger.Info("scheduler running",
		zap.Int("startup_systems", len(s.startup)),
		zap.Int("systems", len(s.systems)),
		zap.Int("entities", s.storage.EntityCount()),
	)

	return s.validateSystems()
}

func (s *Scheduler) validateSystems() error {
	for _, r := range s.systems {
		if err := r.validate(); err != nil {
			s.logger.Error("system cannot run", zap.String("system", r.name), zap.Error(err))
			return err
		}
	}
	return nil
}

// Once runs one tick: startup if it has not happened yet, then every update
// system with dt seconds of elapsed time, then the queued commands.
func (s *Scheduler) Once(dt float64) error {
	if err := s.Startup(); err != nil {
		return err
	}
	if err := s.validateSystems(); err != nil {
		return err
	}

	s.clock.Get().advance(secondsToDuration(dt))

	frame := newUpdateFrame(dt, s.storage)
	for _, r := range s.systems {
		r.stats.record(r.run(frame))
	}
	frame.Commands.Flush(s.storage)

	return nil
}

// Run ticks every interval until ctx is cancelled, measuring deltas from the
// wall clock. It returns nil on cancellation and the error of the first failed
// tick otherwise. No tick starts after ctx is cancelled. interval must be positive.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("ecs: run interval must be positive, got %s", interval)
	}
	if err := s.Startup(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", zap.Uint64("frames", s.clock.Get().Frame))
			return nil
		case now := <-ticker.C:
			// Both cases may be ready at once; a cancelled run must not tick again.
			if ctx.Err() != nil {
				s.logger.Info("scheduler stopped", zap.Uint64("frames", s.clock.Get().Frame))
				return nil
			}
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// GetStats returns execution statistics for the update systems.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, r := range s.systems {
		st := r.stats
		var avg time.Duration
		minDuration := st.minDuration
		if st.executionCount > 0 {
			avg = st.totalDuration / time.Duration(st.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           r.name,
			ExecutionCount: st.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    st.maxDuration,
			AvgDuration:    avg,
			LastDuration:   st.lastDuration,
			TotalDuration:  st.totalDuration,
		}
		stats.TotalExecutions += st.executionCount
	}

	return stats
}
