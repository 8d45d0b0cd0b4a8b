package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngicks/timetrigger"
	"gorm.io/datatypes"
)

// Entry is one terminal task outcome as stored in the journal.
type Entry struct {
	Id          string            `json:"id" gorm:"primaryKey;not null"`
	RunId       string            `json:"run_id" gorm:"not null;index:run"`
	TaskId      string            `json:"task_id" gorm:"not null;index:task"`
	Label       string            `json:"label" gorm:"index:label"`
	State       string            `json:"state" gorm:"not null"`
	ScheduledAt time.Time         `json:"scheduled_at" gorm:"not null;index:sched,sort:asc"`
	FiredAt     *time.Time        `json:"fired_at,omitempty"`
	DoneAt      *time.Time        `json:"done_at,omitempty"`
	Err         string            `json:"err"`
	Meta        datatypes.JSONMap `json:"meta"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;autoCreateTime:milli"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FromOutcome builds an Entry with a fresh id.
func FromOutcome(runId string, o timetrigger.Outcome, meta map[string]any) Entry {
	e := Entry{
		Id:          uuid.NewString(),
		RunId:       runId,
		TaskId:      o.Id,
		Label:       o.Label,
		State:       o.State.String(),
		ScheduledAt: o.ScheduledAt,
		FiredAt:     optionalTime(o.FiredAt),
		DoneAt:      optionalTime(o.DoneAt),
		Meta:        datatypes.JSONMap{},
	}
	if o.Err != nil {
		e.Err = o.Err.Error()
	}
	for k, v := range meta {
		e.Meta[k] = v
	}
	if !o.FiredAt.IsZero() {
		e.Meta["latency_ms"] = o.Latency().Milliseconds()
	}
	return e
}

// Latency is how late the task fired. Zero if it never fired.
func (e Entry) Latency() time.Duration {
	if e.FiredAt == nil {
		return 0
	}
	return e.FiredAt.Sub(e.ScheduledAt)
}
