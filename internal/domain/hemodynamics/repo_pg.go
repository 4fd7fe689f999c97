package hemodynamics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

type subjectRepoPG struct{ pool *pgxpool.Pool }

func NewSubjectRepoPG(pool *pgxpool.Pool) SubjectRepository {
	return &subjectRepoPG{pool: pool}
}

func (r *subjectRepoPG) Create(ctx context.Context, s *Subject) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO subject (id, display_name) VALUES ($1, $2)
		RETURNING created_at`, s.ID, s.DisplayName).Scan(&s.CreatedAt)
}

func (r *subjectRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Subject, error) {
	var s Subject
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, display_name, created_at FROM subject WHERE id = $1`, id).
		Scan(&s.ID, &s.DisplayName, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type snapshotRepoPG struct{ pool *pgxpool.Pool }

func NewSnapshotRepoPG(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepoPG{pool: pool}
}

const snapCols = `id, subject_id, taken_at,
	sbp, dbp, map, ra, pas, pad, mpap, pcwp,
	hr, co, ci, sv, cpo, papi, svr, pvr,
	notes, created_at`

func (r *snapshotRepoPG) scanRow(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	v := &s.Values
	err := row.Scan(&s.ID, &s.SubjectID, &s.TakenAt,
		&v.SBP, &v.DBP, &v.MAP, &v.RA, &v.PAS, &v.PAD, &v.MPAP, &v.PCWP,
		&v.HR, &v.CO, &v.CI, &v.SV, &v.CPO, &v.PAPI, &v.SVR, &v.PVR,
		&s.Notes, &s.CreatedAt)
	return &s, err
}

func (r *snapshotRepoPG) Create(ctx context.Context, s *Snapshot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Notes == nil {
		s.Notes = []string{}
	}
	v := s.Values
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO snapshot (id, subject_id, taken_at,
			sbp, dbp, map, ra, pas, pad, mpap, pcwp,
			hr, co, ci, sv, cpo, papi, svr, pvr, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING created_at`,
		s.ID, s.SubjectID, s.TakenAt,
		v.SBP, v.DBP, v.MAP, v.RA, v.PAS, v.PAD, v.MPAP, v.PCWP,
		v.HR, v.CO, v.CI, v.SV, v.CPO, v.PAPI, v.SVR, v.PVR, s.Notes).Scan(&s.CreatedAt)
}

func (r *snapshotRepoPG) ListBySubject(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*Snapshot, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM snapshot WHERE subject_id = $1`, subjectID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+snapCols+` FROM snapshot
		WHERE subject_id = $1 ORDER BY taken_at, created_at LIMIT $2 OFFSET $3`, subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *snapshotRepoPG) AllBySubject(ctx context.Context, subjectID uuid.UUID) ([]*Snapshot, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+snapCols+` FROM snapshot
		WHERE subject_id = $1 ORDER BY taken_at, created_at`, subjectID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *snapshotRepoPG) collect(rows pgx.Rows) ([]*Snapshot, error) {
	defer rows.Close()
	var items []*Snapshot
	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
