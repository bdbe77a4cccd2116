package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/jobs"
)

// StateSyncJobType identifies persistence jobs on the sync queue.
const StateSyncJobType = "schedule_state_sync"

// StateStore is the durable home of the schedule state.
type StateStore interface {
	Get(ctx context.Context, id string) (*models.ScheduleStateRecord, error)
	Upsert(ctx context.Context, record *models.ScheduleStateRecord) error
}

// StateCache holds a short-lived copy of the state.
type StateCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// StateBackup writes local files next to the process.
type StateBackup interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	CleanupOlderThan(dir string, ttl time.Duration) ([]string, error)
}

const snapshotDir = "snapshots"

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// StateSyncConfig governs persistence.
type StateSyncConfig struct {
	StateID  string
	Debounce time.Duration
	CacheTTL time.Duration
	// SnapshotRetention keeps one dated backup per day for this long. Zero disables snapshots.
	SnapshotRetention time.Duration
}

type syncPayload struct {
	seq   uint64
	state models.ScheduleState
}

// StateSyncService persists committed schedule states. Rapid successive commits collapse into one write
// after the debounce window; writes run on a job queue so callers never wait on storage.
type StateSyncService struct {
	store   StateStore
	cache   StateCache
	backup  StateBackup
	logger  *zap.Logger
	metrics *MetricsService
	cfg     StateSyncConfig

	mu        sync.Mutex
	queue     jobEnqueuer
	pending   *models.ScheduleState
	timer     *time.Timer
	seq       uint64
	persisted uint64
	writeMu   sync.Mutex
}

// NewStateSyncService wires persistence. Any of store, cache and backup may be nil.
func NewStateSyncService(store StateStore, cache StateCache, backup StateBackup, logger *zap.Logger, metrics *MetricsService, cfg StateSyncConfig) *StateSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StateID == "" {
		cfg.StateID = "default"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &StateSyncService{store: store, cache: cache, backup: backup, logger: logger, metrics: metrics, cfg: cfg}
}

// AttachQueue routes debounced writes through a job queue. Without one, writes run on the timer goroutine.
func (s *StateSyncService) AttachQueue(queue jobEnqueuer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = queue
}

// Schedule records the latest state and restarts the debounce timer.
func (s *StateSyncService) Schedule(state models.ScheduleState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &state
	if s.timer == nil {
		s.timer = time.AfterFunc(s.cfg.Debounce, s.flushPending)
		return
	}
	s.timer.Reset(s.cfg.Debounce)
}

func (s *StateSyncService) takePending() (syncPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending == nil {
		return syncPayload{}, false
	}
	s.seq++
	payload := syncPayload{seq: s.seq, state: *s.pending}
	s.pending = nil
	return payload, true
}

func (s *StateSyncService) flushPending() {
	payload, ok := s.takePending()
	if !ok {
		return
	}
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()

	if queue != nil {
		err := queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: StateSyncJobType, Payload: payload})
		if err == nil {
			return
		}
		s.logger.Warn("state sync enqueue failed, writing inline", zap.Error(err))
	}
	if err := s.persist(context.Background(), payload); err != nil {
		s.logger.Error("state sync failed", zap.Error(err))
	}
}

// HandleJob is the queue handler for persistence jobs.
func (s *StateSyncService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(syncPayload)
	if !ok {
		s.logger.Error("unexpected state sync payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	return s.persist(ctx, payload)
}

// Flush writes any pending state immediately. Used on shutdown.
func (s *StateSyncService) Flush(ctx context.Context) error {
	payload, ok := s.takePending()
	if !ok {
		return nil
	}
	return s.persist(ctx, payload)
}

// persist writes the local backup, then Postgres, then the Redis cache. Superseded payloads are skipped
// so a retried job never overwrites a newer state.
func (s *StateSyncService) persist(ctx context.Context, payload syncPayload) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	stale := payload.seq < s.persisted
	s.mu.Unlock()
	if stale {
		s.logger.Debug("skipping superseded state sync", zap.Uint64("seq", payload.seq))
		return nil
	}

	start := time.Now()
	var errs []error

	if s.backup != nil {
		data, err := json.Marshal(payload.state)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode backup: %w", err))
		} else {
			if _, err := s.backup.Save(s.backupFile(), data); err != nil {
				errs = append(errs, fmt.Errorf("write backup: %w", err))
			}
			if s.cfg.SnapshotRetention > 0 {
				if _, err := s.backup.Save(s.snapshotFile(start), data); err != nil {
					errs = append(errs, fmt.Errorf("write snapshot: %w", err))
				}
			}
		}
	}

	if s.store != nil {
		record, err := models.NewScheduleStateRecord(s.cfg.StateID, payload.state)
		if err != nil {
			errs = append(errs, err)
		} else {
			queryStart := time.Now()
			if err := s.store.Upsert(ctx, record); err != nil {
				errs = append(errs, err)
			}
			s.metrics.ObserveDBQuery("schedule_state_upsert", time.Since(queryStart))
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cacheKey(), payload.state, s.cfg.CacheTTL); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	s.metrics.ObserveSync(err, time.Since(start))
	if err != nil {
		s.logger.Warn("state sync incomplete", zap.Uint64("seq", payload.seq), zap.Error(err))
		return err
	}

	s.mu.Lock()
	if payload.seq > s.persisted {
		s.persisted = payload.seq
	}
	s.mu.Unlock()
	s.logger.Debug("state synced", zap.Uint64("seq", payload.seq), zap.Duration("duration", time.Since(start)))
	return nil
}

// Load returns the most authoritative stored state: Postgres, then the Redis cache, then the local
// backup. It falls back to the default roster with an empty week and reports which source was used.
func (s *StateSyncService) Load(ctx context.Context) (models.ScheduleState, string) {
	if s.store != nil {
		queryStart := time.Now()
		record, err := s.store.Get(ctx, s.cfg.StateID)
		s.metrics.ObserveDBQuery("schedule_state_get", time.Since(queryStart))
		switch {
		case err == nil:
			state, decodeErr := record.State()
			if decodeErr == nil {
				return state, "postgres"
			}
			s.logger.Warn("stored state is not decodable", zap.Error(decodeErr))
		case errors.Is(err, appErrors.ErrNotFound):
			s.logger.Info("no stored state in postgres", zap.String("state_id", s.cfg.StateID))
		default:
			s.logger.Warn("load state from postgres failed", zap.Error(err))
		}
	}

	if s.cache != nil {
		var state models.ScheduleState
		cacheStart := time.Now()
		err := s.cache.Get(ctx, s.cacheKey(), &state)
		s.metrics.RecordCacheOperation(err == nil, time.Since(cacheStart))
		switch {
		case err == nil:
			return withDefaults(state), "redis"
		case errors.Is(err, appErrors.ErrCacheMiss):
		default:
			s.logger.Warn("load state from redis failed", zap.Error(err))
		}
	}

	if s.backup != nil {
		data, err := s.backup.Read(s.backupFile())
		if err == nil {
			var state models.ScheduleState
			decodeErr := json.Unmarshal(data, &state)
			if decodeErr == nil {
				return withDefaults(state), "backup"
			}
			s.logger.Warn("local backup is not decodable", zap.Error(decodeErr))
		}
	}

	return models.NewScheduleState(), "default"
}

// PruneSnapshots removes dated backups older than the retention window.
func (s *StateSyncService) PruneSnapshots() {
	if s.backup == nil || s.cfg.SnapshotRetention <= 0 {
		return
	}
	removed, err := s.backup.CleanupOlderThan(snapshotDir, s.cfg.SnapshotRetention)
	if err != nil {
		s.logger.Warn("snapshot cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("old snapshots removed", zap.Strings("files", removed))
	}
}

func (s *StateSyncService) snapshotFile(at time.Time) string {
	return fmt.Sprintf("%s/%s-%s.json", snapshotDir, s.cfg.StateID, at.UTC().Format("20060102"))
}

func (s *StateSyncService) cacheKey() string {
	return "schedule_state:" + s.cfg.StateID
}

func (s *StateSyncService) backupFile() string {
	return s.cfg.StateID + ".json"
}

func withDefaults(state models.ScheduleState) models.ScheduleState {
	if state.Schedule == nil {
		state.Schedule = models.NewSchedule()
	}
	if state.LockedAssignments == nil {
		state.LockedAssignments = models.LockedAssignments{}
	}
	if state.Instructors == nil {
		state.Instructors = []models.Instructor{}
	}
	return state
}
