package teacher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"records-service/internal/metrics"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrInvalidInput       = errors.New("invalid input")
)

type Service interface {
	Authenticate(ctx context.Context, email, password string) (*Teacher, error)
	GetTeacher(ctx context.Context, id string) (*Teacher, error)
	CreateTeacher(ctx context.Context, req CreateRequest) (*Teacher, error)
	ListTeachers(ctx context.Context) ([]Teacher, error)
	SeedDefaults(ctx context.Context) (SeedResult, error)
}

type service struct {
	repo       Repository
	validate   *validator.Validate
	metrics    *metrics.Metrics
	logger     *slog.Logger
	bcryptCost int
}

type Option func(*service)

// WithBcryptCost overrides the hashing cost, mostly to keep tests fast.
func WithBcryptCost(cost int) Option {
	return func(s *service) { s.bcryptCost = cost }
}

func NewService(repo Repository, m *metrics.Metrics, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		repo:       repo,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		metrics:    m,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate matches the email exactly and compares the bcrypt hash.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Teacher, error) {
	t, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrTeacherNotFound) {
			s.metrics.RecordLogin(ctx, false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(t.Password), []byte(password)); err != nil {
		s.metrics.RecordLogin(ctx, false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(ctx, true)
	return t, nil
}

func (s *service) GetTeacher(ctx context.Context, id string) (*Teacher, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateTeacher(ctx context.Context, req CreateRequest) (*Teacher, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Department = strings.TrimSpace(req.Department)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &Teacher{
		Email:      req.Email,
		Password:   string(hash),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "teacher created", "id", created.ID, "email", created.Email)
	s.metrics.RecordTeacherCreated(ctx)
	return created, nil
}

func (s *service) ListTeachers(ctx context.Context) ([]Teacher, error) {
	return s.repo.List(ctx)
}

// SeedDefaults provisions the administrator and demo accounts on an empty table.
func (s *service) SeedDefaults(ctx context.Context) (SeedResult, error) {
	teachers := make([]*Teacher, 0, len(defaultAccounts))
	for _, acc := range defaultAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), s.bcryptCost)
		if err != nil {
			return SeedResult{}, fmt.Errorf("hash default password: %w", err)
		}
		teachers = append(teachers, &Teacher{
			Email:      acc.email,
			Password:   string(hash),
			FirstName:  acc.firstName,
			LastName:   acc.lastName,
			Department: acc.department,
		})
	}

	created, count, err := s.repo.SeedIfEmpty(ctx, teachers)
	if err != nil {
		return SeedResult{}, err
	}

	if created {
		s.logger.InfoContext(ctx, "default teachers created", "count", count)
		s.metrics.RecordDefaultTeachersSeeded(ctx, count)
	} else {
		s.logger.InfoContext(ctx, "teachers already exist, seed skipped", "count", count)
	}

	return SeedResult{Created: created, Count: count}, nil
}
