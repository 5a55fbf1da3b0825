package student

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
	Create(ctx context.Context, student *Student) (*Student, error)
	GetAll(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id string) (*Student, error)
	ExistsByStudentID(ctx context.Context, studentID, excludeID string) (bool, error)
	Update(ctx context.Context, student *Student, columns ...string) error
	Delete(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	start := time.Now()
	_, err := r.db.NewInsert().Model(student).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateStudentID
		}
		return nil, err
	}
	return student, nil
}

// GetAll returns every student in insertion order.
func (r *repository) GetAll(ctx context.Context) ([]Student, error) {
	start := time.Now()
	students := make([]Student, 0)
	err := r.db.NewSelect().
		Model(&students).
		Order("s.created_at ASC", "s.id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("s.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) ExistsByStudentID(ctx context.Context, studentID, excludeID string) (bool, error) {
	start := time.Now()
	q := r.db.NewSelect().Model((*Student)(nil)).Where("s.student_id = ?", studentID)
	if excludeID != "" {
		q = q.Where("s.id <> ?", excludeID)
	}
	exists, err := q.Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "exists", "students", time.Since(start), err)

	return exists, err
}

// Update writes the given columns plus updated_at.
func (r *repository) Update(ctx context.Context, student *Student, columns ...string) error {
	student.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")

	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(student).
		Column(columns...).
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "students", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateStudentID
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// Delete reports whether a row was removed.
func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Student)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "students", time.Since(start), err)

	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
