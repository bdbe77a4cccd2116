package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/jobs"
)

type stateStoreStub struct {
	mu      sync.Mutex
	record  *models.ScheduleStateRecord
	upserts int
	err     error
}

func (s *stateStoreStub) Get(ctx context.Context, id string) (*models.ScheduleStateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule state not found")
	}
	cp := *s.record
	return &cp, nil
}

func (s *stateStoreStub) Upsert(ctx context.Context, record *models.ScheduleStateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := *record
	s.record = &cp
	s.upserts++
	return nil
}

func (s *stateStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

type stateCacheStub struct {
	mu    sync.Mutex
	items map[string][]byte
	ttl   time.Duration
}

func newStateCacheStub() *stateCacheStub {
	return &stateCacheStub{items: map[string][]byte{}}
}

func (c *stateCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *stateCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	c.ttl = ttl
	return nil
}

type stateBackupStub struct {
	mu      sync.Mutex
	files   map[string][]byte
	cleaned []string
}

func newStateBackupStub() *stateBackupStub {
	return &stateBackupStub{files: map[string][]byte{}}
}

func (b *stateBackupStub) Save(filename string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[filename] = append([]byte(nil), data...)
	return filename, nil
}

func (b *stateBackupStub) Read(filename string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.files[filename]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (b *stateBackupStub) CleanupOlderThan(dir string, ttl time.Duration) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleaned = append(b.cleaned, dir)
	return []string{dir + "/old.json"}, nil
}

type enqueuerStub struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (e *enqueuerStub) Enqueue(job jobs.Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, job)
	return nil
}

func (e *enqueuerStub) queued() []jobs.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]jobs.Job(nil), e.jobs...)
}

func syncFixture() models.ScheduleState {
	state := models.NewScheduleState()
	state.Schedule.Set("Mon", models.ClassTypeLagree, "6:00 AM", models.AssignedCell("MH"))
	state.LockedAssignments.Set("Mon", models.ClassTypeLagree, "6:00 AM", "MH")
	return state
}

func TestStateSyncFlushWritesEveryTarget(t *testing.T) {
	store, cache, backup := &stateStoreStub{}, newStateCacheStub(), newStateBackupStub()
	svc := NewStateSyncService(store, cache, backup, zap.NewNop(), NewMetricsService(), StateSyncConfig{
		StateID: "studio", Debounce: time.Hour, CacheTTL: time.Minute, SnapshotRetention: 24 * time.Hour,
	})

	svc.Schedule(syncFixture())
	require.NoError(t, svc.Flush(context.Background()))

	assert.Equal(t, 1, store.count())
	assert.Equal(t, "studio", store.record.ID)
	assert.Contains(t, cache.items, "schedule_state:studio")
	assert.Equal(t, time.Minute, cache.ttl)
	assert.Contains(t, backup.files, "studio.json")

	snapshots := 0
	for name := range backup.files {
		if strings.HasPrefix(name, "snapshots/studio-") {
			snapshots++
		}
	}
	assert.Equal(t, 1, snapshots)

	require.NoError(t, svc.Flush(context.Background()), "nothing pending is a no-op")
	assert.Equal(t, 1, store.count())
}

func TestStateSyncDebounceCollapsesWrites(t *testing.T) {
	store := &stateStoreStub{}
	svc := NewStateSyncService(store, nil, nil, zap.NewNop(), nil, StateSyncConfig{Debounce: 20 * time.Millisecond})

	first := models.NewScheduleState()
	latest := syncFixture()
	svc.Schedule(first)
	svc.Schedule(first)
	svc.Schedule(latest)

	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, store.count())

	stored, err := store.record.State()
	require.NoError(t, err)
	assert.True(t, stored.Schedule.Equal(latest.Schedule))
}

func TestStateSyncRoutesThroughQueue(t *testing.T) {
	store := &stateStoreStub{}
	queue := &enqueuerStub{}
	svc := NewStateSyncService(store, nil, nil, zap.NewNop(), nil, StateSyncConfig{Debounce: 5 * time.Millisecond})
	svc.AttachQueue(queue)

	svc.Schedule(syncFixture())
	require.Eventually(t, func() bool { return len(queue.queued()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, store.count())

	job := queue.queued()[0]
	assert.Equal(t, StateSyncJobType, job.Type)
	require.NoError(t, svc.HandleJob(context.Background(), job))
	assert.Equal(t, 1, store.count())
}

func TestStateSyncWritesInlineWhenQueueRejects(t *testing.T) {
	store := &stateStoreStub{}
	svc := NewStateSyncService(store, nil, nil, zap.NewNop(), nil, StateSyncConfig{Debounce: 5 * time.Millisecond})
	svc.AttachQueue(&enqueuerStub{err: jobs.ErrQueueFull})

	svc.Schedule(syncFixture())
	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStateSyncSkipsSupersededPayloads(t *testing.T) {
	store := &stateStoreStub{}
	svc := NewStateSyncService(store, nil, nil, zap.NewNop(), nil, StateSyncConfig{})

	require.NoError(t, svc.persist(context.Background(), syncPayload{seq: 2, state: syncFixture()}))
	require.NoError(t, svc.persist(context.Background(), syncPayload{seq: 1, state: models.NewScheduleState()}))

	assert.Equal(t, 1, store.count())
	stored, err := store.record.State()
	require.NoError(t, err)
	assert.Equal(t, models.AssignedCell("MH"), stored.Schedule.Cell("Mon", models.ClassTypeLagree, "6:00 AM"))
}

func TestStateSyncReportsFailures(t *testing.T) {
	store := &stateStoreStub{err: errors.New("connection refused")}
	backup := newStateBackupStub()
	metrics := NewMetricsService()
	svc := NewStateSyncService(store, nil, backup, zap.NewNop(), metrics, StateSyncConfig{})

	svc.Schedule(syncFixture())
	err := svc.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, backup.files, "default.json", "the backup is still written")
	assert.Equal(t, uint64(1), metrics.Snapshot().SyncFailures)
}

func TestStateSyncHandleJobIgnoresForeignPayload(t *testing.T) {
	svc := NewStateSyncService(nil, nil, nil, nil, nil, StateSyncConfig{})
	assert.NoError(t, svc.HandleJob(context.Background(), jobs.Job{ID: "x", Payload: "nope"}))
}

func TestStateSyncLoadOrder(t *testing.T) {
	ctx := context.Background()
	fixture := syncFixture()

	store := &stateStoreStub{}
	record, err := models.NewScheduleStateRecord("default", fixture)
	require.NoError(t, err)
	store.record = record
	svc := NewStateSyncService(store, newStateCacheStub(), newStateBackupStub(), zap.NewNop(), nil, StateSyncConfig{})
	state, source := svc.Load(ctx)
	assert.Equal(t, "postgres", source)
	assert.True(t, state.Schedule.Equal(fixture.Schedule))

	cache := newStateCacheStub()
	require.NoError(t, cache.Set(ctx, "schedule_state:default", fixture, time.Minute))
	svc = NewStateSyncService(&stateStoreStub{}, cache, newStateBackupStub(), zap.NewNop(), nil, StateSyncConfig{})
	_, source = svc.Load(ctx)
	assert.Equal(t, "redis", source)

	backup := newStateBackupStub()
	raw, err := json.Marshal(fixture)
	require.NoError(t, err)
	_, _ = backup.Save("default.json", raw)
	svc = NewStateSyncService(&stateStoreStub{}, newStateCacheStub(), backup, zap.NewNop(), nil, StateSyncConfig{})
	state, source = svc.Load(ctx)
	assert.Equal(t, "backup", source)
	id, locked := state.LockedAssignments.Get("Mon", models.ClassTypeLagree, "6:00 AM")
	require.True(t, locked)
	assert.Equal(t, "MH", id)

	svc = NewStateSyncService(nil, nil, nil, zap.NewNop(), nil, StateSyncConfig{})
	state, source = svc.Load(ctx)
	assert.Equal(t, "default", source)
	assert.Len(t, state.Instructors, len(models.DefaultInstructors()))
}

func TestStateSyncPruneSnapshots(t *testing.T) {
	backup := newStateBackupStub()
	NewStateSyncService(nil, nil, backup, zap.NewNop(), nil, StateSyncConfig{}).PruneSnapshots()
	assert.Empty(t, backup.cleaned, "retention disabled")

	NewStateSyncService(nil, nil, backup, zap.NewNop(), nil, StateSyncConfig{SnapshotRetention: time.Hour}).PruneSnapshots()
	assert.Equal(t, []string{snapshotDir}, backup.cleaned)
}
