package workouts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/2beens/workoutlog/internal/storage"
	"github.com/2beens/workoutlog/internal/telemetry/metrics"
	"github.com/2beens/workoutlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=workouts_test

type durabilityStore interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
}

const DefaultKey = "workouts"

type StoreParams struct {
	Storage durabilityStore
	// Key the snapshot is kept under, DefaultKey if empty.
	Key     string
	Metrics *metrics.Manager
	// Now is used for ids and creation times, time.Now if nil.
	Now func() time.Time
}

// Store owns the workout log snapshot. It holds no log itself: callers
// pass the current log in and get the new one back.
type Store struct {
	storage durabilityStore
	key     string
	metrics *metrics.Manager
	now     func() time.Time
	ids     *idGenerator
}

func NewStore(params StoreParams) *Store {
	key := params.Key
	if key == "" {
		key = DefaultKey
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		storage: params.Storage,
		key:     key,
		metrics: params.Metrics,
		now:     now,
		ids:     &idGenerator{},
	}
}

// Load returns the persisted log. A missing, unreadable or corrupt
// snapshot results in an empty log, never an error.
func (s *Store) Load(ctx context.Context) Log {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.load")
	defer span.End()

	payload, err := s.storage.Read(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Debugf("no workout log under [%s], starting empty", s.key)
		} else {
			log.Warnf("read workout log [%s], starting empty: %s", s.key, err)
		}
		return Log{}
	}

	workoutLog, err := DecodeLog(payload)
	if err != nil {
		log.Warnf("corrupt workout log [%s], starting empty: %s", s.key, err)
		return Log{}
	}

	s.ids.observe(workoutLog.MaxID())
	s.setSizeGauge(workoutLog)
	span.SetAttributes(attribute.Int("workouts", len(workoutLog)))
	log.Debugf("loaded %d workouts from [%s]", len(workoutLog), s.key)

	return workoutLog
}

// Add validates the fields, appends a new record and persists the new
// log. On a validation failure the given log is returned as is, together
// with a *ValidationError. The duration text is kept verbatim.
func (s *Store) Add(ctx context.Context, current Log, name, typeText, durationText string) (_ Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	name = strings.TrimSpace(name)
	typeText = strings.TrimSpace(typeText)
	durationText = strings.TrimSpace(durationText)

	verr := &ValidationError{}
	if name == "" {
		verr.Missing = append(verr.Missing, "name")
	}
	workoutType, typeOK := ParseType(typeText)
	if typeText == "" {
		verr.Missing = append(verr.Missing, "type")
	} else if !typeOK {
		verr.Invalid = append(verr.Invalid, "type")
	}
	if durationText == "" {
		verr.Missing = append(verr.Missing, "duration")
	}
	if !verr.empty() {
		if s.metrics != nil {
			s.metrics.CounterValidationErrors.Inc()
		}
		return current, verr
	}

	s.ids.observe(current.MaxID())
	now := s.now()
	record := Record{
		ID:        s.ids.next(now),
		Name:      name,
		Type:      workoutType,
		Duration:  Duration(durationText),
		CreatedAt: now,
	}
	next := current.With(record)

	span.SetAttributes(
		attribute.Int64("workout.id", record.ID),
		attribute.String("workout.type", string(record.Type)),
	)
	if s.metrics != nil {
		s.metrics.CounterWorkoutsAdded.WithLabelValues(string(record.Type)).Inc()
	}
	log.Debugf("workout added: %d [%s] [%s] [%s]", record.ID, record.Type, record.Name, record.Duration)

	s.persistQuietly(ctx, next)
	return next, nil
}

// Delete removes the record with the given id and persists the result.
// An unknown id leaves the log untouched, but it is still persisted.
func (s *Store) Delete(ctx context.Context, current Log, id int64) Log {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("workout.id", id))

	next := current.Without(id)
	if len(next) != len(current) {
		if s.metrics != nil {
			s.metrics.CounterWorkoutsDeleted.Inc()
		}
		log.Debugf("workout deleted: %d", id)
	} else {
		log.Tracef("delete workout %d: not in log", id)
	}

	s.persistQuietly(ctx, next)
	return next
}

// Persist writes the full log, replacing the previous snapshot.
func (s *Store) Persist(ctx context.Context, workoutLog Log) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.persist")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	payload, err := EncodeLog(workoutLog)
	if err != nil {
		return err
	}

	if err := s.storage.Write(ctx, s.key, payload); err != nil {
		return err
	}

	s.setSizeGauge(workoutLog)
	return nil
}

// persistQuietly is used by the mutations: the new log is already
// computed, a failed write is only logged and counted.
func (s *Store) persistQuietly(ctx context.Context, workoutLog Log) {
	if err := s.Persist(ctx, workoutLog); err != nil {
		log.Errorf("persist workout log [%s]: %s", s.key, err)
		if s.metrics != nil {
			s.metrics.CounterPersistFailures.Inc()
		}
	}
}

func (s *Store) setSizeGauge(workoutLog Log) {
	if s.metrics != nil {
		s.metrics.GaugeWorkouts.Set(float64(len(workoutLog)))
	}
}
