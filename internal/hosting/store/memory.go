package store

import (
	"context"
	"sort"
	"sync"

	"didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/pkg/platform/sentinel"
)

type resourceKey struct {
	kind models.Kind
	id   string
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	resources   map[resourceKey]models.Resource
	statusLists map[string]map[int64]models.StatusList
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		resources:   make(map[resourceKey]models.Resource),
		statusLists: make(map[string]map[int64]models.StatusList),
	}
}

func (s *MemoryStore) CreateResource(_ context.Context, resource *models.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := resourceKey{kind: resource.Kind, id: resource.ResourceID}
	if _, ok := s.resources[key]; ok {
		return sentinel.ErrConflict
	}
	s.resources[key] = *resource
	return nil
}

func (s *MemoryStore) FindResource(_ context.Context, kind models.Kind, resourceID string) (*models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resource, ok := s.resources[resourceKey{kind: kind, id: resourceID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &resource, nil
}

func (s *MemoryStore) CreateStatusList(_ context.Context, list *models.StatusList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions, ok := s.statusLists[list.RevRegDefResourceID]
	if !ok {
		versions = make(map[int64]models.StatusList)
		s.statusLists[list.RevRegDefResourceID] = versions
	}
	if _, exists := versions[list.Timestamp]; exists {
		return sentinel.ErrConflict
	}
	versions[list.Timestamp] = *list
	return nil
}

// FindLatestStatusList returns the newest version with timestamp <= atOrBefore.
func (s *MemoryStore) FindLatestStatusList(_ context.Context, revRegDefResourceID string, atOrBefore int64) (*models.StatusList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		best  models.StatusList
		found bool
	)
	for ts, list := range s.statusLists[revRegDefResourceID] {
		if ts <= atOrBefore && (!found || ts > best.Timestamp) {
			best, found = list, true
		}
	}
	if !found {
		return nil, sentinel.ErrNotFound
	}
	return &best, nil
}

func (s *MemoryStore) ListStatusListTimestamps(_ context.Context, revRegDefResourceID string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stamps := make([]int64, 0, len(s.statusLists[revRegDefResourceID]))
	for ts := range s.statusLists[revRegDefResourceID] {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
	return stamps, nil
}
