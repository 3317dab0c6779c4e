package core

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/schema"
)

// memStore is an in-memory contract.VolumeStore for pipeline tests.
type memStore struct {
	mu      sync.Mutex
	volumes map[string]*schema.Volume // keyed by path
	masks   map[string][]uint32
	maskH   map[string]int
	maskW   map[string]int
	written map[string][][]uint16
}

func newMemStore() *memStore {
	return &memStore{
		volumes: make(map[string]*schema.Volume),
		masks:   make(map[string][]uint32),
		maskH:   make(map[string]int),
		maskW:   make(map[string]int),
		written: make(map[string][][]uint16),
	}
}

func (m *memStore) ListStacks(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for path := range m.volumes {
		if filepath.Dir(path) == dir {
			names = append(names, filepath.Base(path))
		}
	}
	for path := range m.masks {
		if filepath.Dir(path) == dir {
			names = append(names, filepath.Base(path))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memStore) ReadVolume(path string, frames, slices int) (*schema.Volume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vol, ok := m.volumes[path]
	if !ok {
		return nil, fmt.Errorf("no volume at %s", path)
	}
	if strings.Contains(path, "flat3d") {
		return nil, fmt.Errorf("%s: %w", path, contract.ErrNotHyperstack)
	}
	return vol, nil
}

func (m *memStore) WriteStack(path string, planes [][]uint16, h, w int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written[path] = planes
	return nil
}

func (m *memStore) ReadMask(path string) ([]uint32, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	labels, ok := m.masks[path]
	if !ok {
		return nil, 0, 0, fmt.Errorf("no mask at %s", path)
	}
	return labels, m.maskH[path], m.maskW[path], nil
}

// memRunStore is an in-memory contract.RunStore capturing tracking calls.
type memRunStore struct {
	mu     sync.Mutex
	nextID int64
	runs   []schema.RunRecord
	rows   []schema.ProjectionRowRecord
	ended  map[int64]int
}

func newMemRunStore() *memRunStore {
	return &memRunStore{ended: make(map[int64]int)}
}

func (s *memRunStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.runs = append(s.runs, schema.RunRecord{RunID: s.nextID, StartTime: startTime})
	return s.nextID, nil
}

func (s *memRunStore) EndRun(runID int64, endTime time.Time, totalFiles int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended[runID] = totalFiles
	return nil
}

func (s *memRunStore) RecordProjectionRow(runID int64, fileName string, tp schema.TimepointResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, schema.ProjectionRowRecord{
		RunID:      runID,
		FileName:   fileName,
		Timepoint:  int32(tp.Timepoint),
		BestZ:      int32(tp.BestZ),
		StartZ:     int32(tp.StartZ),
		StopZ:      int32(tp.StopZ),
		NSlices:    int32(tp.NSlices),
		Projection: string(tp.Projection),
		FocusScore: tp.FocusScore,
	})
	return nil
}

func (s *memRunStore) GetStatus() (schema.StoreStatus, error) {
	return schema.StoreStatus{Connected: true}, nil
}

func (s *memRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	return s.runs, nil
}

func (s *memRunStore) GetAllProjectionRows() ([]schema.ProjectionRowRecord, error) {
	return s.rows, nil
}

func (s *memRunStore) Close() error { return nil }

// memManager hands out an optional memRunStore.
type memManager struct {
	store *memRunStore
}

func (m *memManager) GetRunStore() contract.RunStore {
	if m.store == nil {
		return nil
	}
	return m.store
}

// stubRunner records the command it was asked to run.
type stubRunner struct {
	name string
	args []string
	err  error
}

func (r *stubRunner) Run(_ context.Context, _, _ io.Writer, name string, args ...string) error {
	r.name = name
	r.args = args
	return r.err
}
