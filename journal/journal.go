package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/ngicks/timetrigger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Journal is an append-only history of task outcomes backed by gorm.
// It records what happened; it never restores schedules.
type Journal struct {
	// sqlite allows a single writer; hooks fire from many goroutines.
	writeMu sync.Mutex

	db     *gorm.DB
	runId  string
	meta   map[string]any
	logger zerolog.Logger
}

type Option func(j *Journal)

// WithRunId overrides the generated run id that groups entries of a single process.
func WithRunId(runId string) Option {
	return func(j *Journal) {
		if runId != "" {
			j.runId = runId
		}
	}
}

// WithMeta attaches meta to every recorded entry.
func WithMeta(meta map[string]any) Option {
	return func(j *Journal) {
		for k, v := range meta {
			j.meta[k] = v
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// New wraps db, migrating the Entry schema.
func New(db *gorm.DB, options ...Option) (*Journal, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	j := &Journal{
		db:     db,
		runId:  uuid.NewString(),
		meta:   map[string]any{},
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(j)
	}
	return j, nil
}

// Open opens an sqlite journal at dbPath.
func Open(dbPath string, gormOpts []gorm.Option, options ...Option) (*Journal, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), gormOpts...)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dbPath, err)
	}
	return New(db, options...)
}

func (j *Journal) RunId() string {
	return j.runId
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores o.
func (j *Journal) Record(ctx context.Context, o timetrigger.Outcome) (Entry, error) {
	e := FromOutcome(j.runId, o, j.meta)
	j.writeMu.Lock()
	defer j.writeMu.Unlock()
	if err := j.db.WithContext(ctx).Create(&e).Error; err != nil {
		return Entry{}, fmt.Errorf("journal: record task %s: %w", o.Id, err)
	}
	return e, nil
}

// Hook returns an OnTaskDone that records every outcome.
// A failed record is logged and otherwise ignored; it never affects the batch.
func (j *Journal) Hook() *timetrigger.OnTaskDone {
	fn := timetrigger.OnTaskDone(func(o timetrigger.Outcome) {
		if _, err := j.Record(context.Background(), o); err != nil {
			j.logger.Error().Err(err).Str("task_id", o.Id).Msg("failed to record outcome")
		}
	})
	return &fn
}

// Query narrows Find. Empty fields match everything.
type Query struct {
	RunId  string
	TaskId string
	Label  string
	States []timetrigger.TaskState
}

// Find returns entries matching q ordered by scheduled time, then creation.
// limit <= 0 means no limit.
func (j *Journal) Find(ctx context.Context, q Query, offset, limit int) ([]Entry, error) {
	tx := j.db.WithContext(ctx).Model(&Entry{})
	if q.RunId != "" {
		tx = tx.Where("run_id = ?", q.RunId)
	}
	if q.TaskId != "" {
		tx = tx.Where("task_id = ?", q.TaskId)
	}
	if q.Label != "" {
		tx = tx.Where("label = ?", q.Label)
	}
	if len(q.States) > 0 {
		states := make([]string, len(q.States))
		for i, s := range q.States {
			states[i] = s.String()
		}
		tx = tx.Where("state IN ?", states)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var entries []Entry
	if err := tx.Order("scheduled_at asc").Order("created_at asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("journal: find: %w", err)
	}
	return entries, nil
}
