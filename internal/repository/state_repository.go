package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
)

const scheduleStatesSchema = `CREATE TABLE IF NOT EXISTS schedule_states (
	id TEXT PRIMARY KEY,
	instructors JSONB NOT NULL DEFAULT '[]',
	schedule JSONB NOT NULL DEFAULT '{}',
	locked_assignments JSONB NOT NULL DEFAULT '{}',
	revision BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// StateRepository persists whole schedule states keyed by state id.
type StateRepository struct {
	db *sqlx.DB
}

// NewStateRepository constructs the repository.
func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

// EnsureSchema creates the state table when missing.
func (r *StateRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, scheduleStatesSchema); err != nil {
		return fmt.Errorf("ensure schedule_states schema: %w", err)
	}
	return nil
}

// Get returns the stored state record.
func (r *StateRepository) Get(ctx context.Context, id string) (*models.ScheduleStateRecord, error) {
	const query = `SELECT id, instructors, schedule, locked_assignments, revision, created_at, updated_at FROM schedule_states WHERE id = $1`
	var record models.ScheduleStateRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule state not found")
		}
		return nil, fmt.Errorf("get schedule state: %w", err)
	}
	return &record, nil
}

// Upsert stores the record, bumping the revision of an existing row.
func (r *StateRepository) Upsert(ctx context.Context, record *models.ScheduleStateRecord) error {
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Revision <= 0 {
		record.Revision = 1
	}
	if len(record.Instructors) == 0 {
		record.Instructors = []byte("[]")
	}
	if len(record.Schedule) == 0 {
		record.Schedule = []byte("{}")
	}
	if len(record.LockedAssignments) == 0 {
		record.LockedAssignments = []byte("{}")
	}

	const query = `INSERT INTO schedule_states (id, instructors, schedule, locked_assignments, revision, created_at, updated_at)
		VALUES (:id, :instructors, :schedule, :locked_assignments, :revision, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE
		SET instructors = EXCLUDED.instructors,
		    schedule = EXCLUDED.schedule,
		    locked_assignments = EXCLUDED.locked_assignments,
		    revision = schedule_states.revision + 1,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert schedule state: %w", err)
	}
	return nil
}
