package hemodynamics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// File is the on-disk export input: one subject and its snapshots.
type File struct {
	Subject   Subject     `json:"subject"`
	Snapshots []*Snapshot `json:"snapshots"`
}

// MemoryStore keeps subjects and snapshots in memory. It backs the CLI when
// reading from a JSON file.
type MemoryStore struct {
	mu        sync.RWMutex
	subjects  map[uuid.UUID]*Subject
	snapshots map[uuid.UUID][]*Snapshot
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subjects:  make(map[uuid.UUID]*Subject),
		snapshots: make(map[uuid.UUID][]*Snapshot),
		now:       time.Now,
	}
}

// LoadFile reads a JSON export input into a new store and returns the
// subject it describes. A missing subject id is generated.
func LoadFile(path string) (*MemoryStore, *Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("decode input %s: %w", path, err)
	}

	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.Subjects().Create(ctx, &f.Subject); err != nil {
		return nil, nil, err
	}
	for i, s := range f.Snapshots {
		if s == nil {
			return nil, nil, fmt.Errorf("snapshot %d: empty entry", i+1)
		}
		s.SubjectID = f.Subject.ID
		if err := st.Snapshots().Create(ctx, s); err != nil {
			return nil, nil, fmt.Errorf("snapshot %d: %w", i+1, err)
		}
	}
	return st, &f.Subject, nil
}

// Subjects returns the store as a SubjectRepository.
func (m *MemoryStore) Subjects() SubjectRepository { return memSubjects{m} }

// Snapshots returns the store as a SnapshotRepository.
func (m *MemoryStore) Snapshots() SnapshotRepository { return memSnapshots{m} }

type memSubjects struct{ m *MemoryStore }

func (r memSubjects) Create(_ context.Context, s *Subject) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if _, ok := r.m.subjects[s.ID]; ok {
		return fmt.Errorf("subject %s already exists", s.ID)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.m.now()
	}
	r.m.subjects[s.ID] = s
	return nil
}

func (r memSubjects) GetByID(_ context.Context, id uuid.UUID) (*Subject, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.subjects[id]
	if !ok {
		return nil, ErrSubjectNotFound
	}
	return s, nil
}

type memSnapshots struct{ m *MemoryStore }

func (r memSnapshots) Create(_ context.Context, s *Snapshot) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.subjects[s.SubjectID]; !ok {
		return ErrSubjectNotFound
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.m.now()
	}
	r.m.snapshots[s.SubjectID] = append(r.m.snapshots[s.SubjectID], s)
	return nil
}

func (r memSnapshots) ListBySubject(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*Snapshot, int, error) {
	all, err := r.AllBySubject(ctx, subjectID)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return []*Snapshot{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r memSnapshots) AllBySubject(_ context.Context, subjectID uuid.UUID) ([]*Snapshot, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return SortSnapshots(r.m.snapshots[subjectID]), nil
}
