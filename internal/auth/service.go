package auth

import (
	"context"
	"time"

	"records-service/internal/teacher"
)

// Session is the result of a successful login.
type Session struct {
	Teacher   teacher.Summary
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	teachers teacher.Service
	tokens   *TokenManager
}

func NewService(teachers teacher.Service, tokens *TokenManager) *Service {
	return &Service{
		teachers: teachers,
		tokens:   tokens,
	}
}

// Login returns teacher.ErrInvalidCredentials for unknown emails and wrong passwords alike.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	t, err := s.teachers.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	summary := t.Summary()
	token, expiresAt, err := s.tokens.Issue(summary)
	if err != nil {
		return nil, err
	}

	return &Session{
		Teacher:   summary,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) CurrentTeacher(ctx context.Context, teacherID string) (*teacher.Summary, error) {
	t, err := s.teachers.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	summary := t.Summary()
	return &summary, nil
}
