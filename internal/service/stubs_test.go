package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/repository"
	"github.com/noah-isme/course-portal-api/pkg/storage"
)

type moduleRepoStub struct {
	mu      sync.Mutex
	modules map[string]models.Module
	err     error
}

func newModuleRepoStub() *moduleRepoStub {
	return &moduleRepoStub{modules: make(map[string]models.Module)}
}

func (r *moduleRepoStub) List(_ context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Module, 0, len(r.modules))
	for _, m := range r.modules {
		if filter.Year != "" && m.Year != filter.Year {
			continue
		}
		if filter.Term != "" && m.Term != filter.Term {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(m.ID+" "+m.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *moduleRepoStub) Create(_ context.Context, module *models.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.modules[module.ID]; ok {
		return repository.ErrDuplicate
	}
	module.CreatedAt = time.Now()
	r.modules[module.ID] = *module
	return nil
}

func (r *moduleRepoStub) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.modules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.modules, id)
	return nil
}

func (r *moduleRepoStub) Terms(_ context.Context) ([]models.TermOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]models.TermOption{}
	for _, m := range r.modules {
		seen[m.Year+"|"+m.Term] = models.TermOption{Year: m.Year, Term: m.Term}
	}
	out := make([]models.TermOption, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

type outlineRepoStub struct {
	mu      sync.Mutex
	records map[string]models.OutlineRecord
	deleted []string
	err     error
}

func newOutlineRepoStub() *outlineRepoStub {
	return &outlineRepoStub{records: make(map[string]models.OutlineRecord)}
}

func (r *outlineRepoStub) Get(_ context.Context, moduleID string) (*models.OutlineRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[moduleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *outlineRepoStub) Upsert(_ context.Context, record *models.OutlineRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	r.records[record.ModuleID] = *record
	return nil
}

func (r *outlineRepoStub) Delete(_ context.Context, moduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, moduleID)
	delete(r.records, moduleID)
	return nil
}

type slideStoreStub struct {
	mu       sync.Mutex
	objects  map[string][]byte
	prefixes []string
	err      error
}

func newSlideStoreStub() *slideStoreStub {
	return &slideStoreStub{objects: make(map[string][]byte)}
}

func (s *slideStoreStub) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *slideStoreStub) Link(_ context.Context, key string) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	if _, ok := s.objects[key]; !ok {
		return "", time.Time{}, storage.ErrObjectNotFound
	}
	return "https://objects.local/" + key + "?sig=x", time.Now().Add(time.Hour), nil
}

func (s *slideStoreStub) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes = append(s.prefixes, prefix)
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}
