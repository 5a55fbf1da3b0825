package teacher

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"records-service/common/metrics"
	"records-service/internal/db"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, teacher *Teacher) (*Teacher, error)
	GetByEmail(ctx context.Context, email string) (*Teacher, error)
	GetByID(ctx context.Context, id string) (*Teacher, error)
	List(ctx context.Context) ([]Teacher, error)
	// SeedIfEmpty inserts teachers only when the table is empty. It returns
	// whether rows were written and the resulting teacher count.
	SeedIfEmpty(ctx context.Context, teachers []*Teacher) (bool, int, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func prepare(t *Teacher) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}

func (r *repository) Create(ctx context.Context, teacher *Teacher) (*Teacher, error) {
	prepare(teacher)

	start := time.Now()
	_, err := r.db.NewInsert().Model(teacher).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "teachers", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return teacher, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Teacher, error) {
	return r.getBy(ctx, "t.email = ?", email)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Teacher, error) {
	return r.getBy(ctx, "t.id = ?", id)
}

func (r *repository) getBy(ctx context.Context, where string, arg any) (*Teacher, error) {
	start := time.Now()
	teacher := new(Teacher)
	err := r.db.NewSelect().Model(teacher).Where(where, arg).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teachers", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return teacher, nil
}

func (r *repository) List(ctx context.Context) ([]Teacher, error) {
	start := time.Now()
	teachers := make([]Teacher, 0)
	err := r.db.NewSelect().Model(&teachers).Order("t.created_at ASC", "t.email ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teachers", time.Since(start), err)

	return teachers, err
}

func (r *repository) SeedIfEmpty(ctx context.Context, teachers []*Teacher) (bool, int, error) {
	var (
		created bool
		count   int
	)

	start := time.Now()
	err := r.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx bun.Tx) error {
		existing, err := tx.NewSelect().Model((*Teacher)(nil)).Count(ctx)
		if err != nil {
			return err
		}
		if existing > 0 {
			count = existing
			return nil
		}

		for _, t := range teachers {
			prepare(t)
		}
		if _, err := tx.NewInsert().Model(&teachers).Exec(ctx); err != nil {
			return err
		}

		created = true
		count = len(teachers)
		return nil
	})

	r.metrics.Database.RecordQuery(ctx, "seed", "teachers", time.Since(start), err)

	if err != nil {
		return false, 0, err
	}
	return created, count, nil
}
