package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"records-service/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateStudentID = errors.New("student ID already exists")
)

// EventPublisher is satisfied by events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service interface {
	ListStudents(ctx context.Context) ([]Student, error)
	GetStudent(ctx context.Context, id string) (*Student, error)
	CreateStudent(ctx context.Context, input *Student) (*Student, error)
	UpdateStudent(ctx context.Context, id string, patch Patch) (*Student, error)
	SetStatus(ctx context.Context, id string, status Status) (*Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	publisher EventPublisher
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(repo Repository, publisher EventPublisher, m *metrics.Metrics, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
		metrics:   m,
		logger:    logger,
	}
}

func (s *service) ListStudents(ctx context.Context) ([]Student, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetStudent(ctx context.Context, id string) (*Student, error) {
	if !isInternalID(id) {
		return nil, ErrStudentNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateStudent(ctx context.Context, input *Student) (*Student, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrInvalidInput)
	}

	student := *input
	student.ID = ""
	student.normalize()
	if student.Status == "" {
		student.Status = StatusPending
	}

	if err := s.validate.Struct(&student); err != nil {
		return nil, validationError(err)
	}

	exists, err := s.repo.ExistsByStudentID(ctx, student.StudentID, "")
	if err != nil {
		return nil, err
	}
	if exists {
		s.metrics.RecordDuplicateStudentID(ctx)
		return nil, ErrDuplicateStudentID
	}

	created, err := s.repo.Create(ctx, &student)
	if err != nil {
		if errors.Is(err, ErrDuplicateStudentID) {
			s.metrics.RecordDuplicateStudentID(ctx)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "student created", "id", created.ID, "student_id", created.StudentID)
	s.metrics.RecordStudentCreated(ctx, string(created.Status))
	s.publish(ctx, EventCreated, created)

	return created, nil
}

func (s *service) UpdateStudent(ctx context.Context, id string, patch Patch) (*Student, error) {
	if !isInternalID(id) {
		return nil, ErrStudentNotFound
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := existing.EffectiveStatus()

	patch.normalize()
	columns := patch.apply(existing)
	if existing.Status == "" {
		existing.Status = StatusPending
		columns = append(columns, "status")
	}

	if err := s.validate.Struct(existing); err != nil {
		return nil, validationError(err)
	}

	if len(columns) == 0 {
		return existing, nil
	}

	if patch.StudentID != nil {
		exists, err := s.repo.ExistsByStudentID(ctx, existing.StudentID, existing.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateStudentID
		}
	}

	if err := s.repo.Update(ctx, existing, columns...); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "student updated", "id", existing.ID, "columns", columns)

	if existing.Status != previous {
		s.metrics.RecordStatusChange(ctx, string(previous), string(existing.Status))
	}
	if patch.StatusOnly() {
		s.publish(ctx, EventStatusChanged, existing)
	} else {
		s.metrics.RecordStudentUpdated(ctx)
		s.publish(ctx, EventUpdated, existing)
	}

	return existing, nil
}

func (s *service) SetStatus(ctx context.Context, id string, status Status) (*Student, error) {
	return s.UpdateStudent(ctx, id, Patch{Status: &status})
}

// DeleteStudent removes the record. Deleting an unknown id is not an error.
func (s *service) DeleteStudent(ctx context.Context, id string) error {
	if !isInternalID(id) {
		s.logger.DebugContext(ctx, "delete of malformed id ignored", "id", id)
		return nil
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		s.logger.DebugContext(ctx, "student already absent", "id", id)
		return nil
	}

	s.logger.InfoContext(ctx, "student deleted", "id", id)
	s.metrics.RecordStudentDeleted(ctx)
	s.publish(ctx, EventDeleted, &Student{ID: id})

	return nil
}

// publish never fails the mutation that triggered it.
func (s *service) publish(ctx context.Context, eventType string, student *Student) {
	if s.publisher == nil {
		return
	}

	event := Event{
		Type:       eventType,
		ID:         student.ID,
		StudentID:  student.StudentID,
		Status:     student.Status,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != EventDeleted {
		event.Student = student
	}

	if err := s.publisher.Publish(ctx, student.ID, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish student event", "type", eventType, "id", student.ID, "error", err)
	}
}

func isInternalID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
