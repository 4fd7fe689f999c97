package hemodynamics

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrSubjectNotFound = errors.New("subject not found")

type SubjectRepository interface {
	Create(ctx context.Context, s *Subject) error
	GetByID(ctx context.Context, id uuid.UUID) (*Subject, error)
}

type SnapshotRepository interface {
	Create(ctx context.Context, s *Snapshot) error
	ListBySubject(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*Snapshot, int, error)
	AllBySubject(ctx context.Context, subjectID uuid.UUID) ([]*Snapshot, error)
}
