package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the domain counters of the records service. All Record* methods are nil-safe.
type Metrics struct {
	studentsCreated       metric.Int64Counter
	studentsUpdated       metric.Int64Counter
	studentStatusChanges  metric.Int64Counter
	studentsDeleted       metric.Int64Counter
	studentsListViewed    metric.Int64Counter
	duplicateStudentIDs   metric.Int64Counter
	teacherLogins         metric.Int64Counter
	teacherLoginFailures  metric.Int64Counter
	teachersCreated       metric.Int64Counter
	defaultTeachersSeeded metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.studentsCreated, "records_service.students.created", "Total number of students created", "{student}"},
		{&m.studentsUpdated, "records_service.students.updated", "Total number of student field edits", "{student}"},
		{&m.studentStatusChanges, "records_service.students.status_changed", "Total number of student status transitions", "{transition}"},
		{&m.studentsDeleted, "records_service.students.deleted", "Total number of students deleted", "{student}"},
		{&m.studentsListViewed, "records_service.students.list_viewed", "Total number of times the student list was fetched", "{view}"},
		{&m.duplicateStudentIDs, "records_service.students.duplicate_rejected", "Total number of creates rejected for a duplicate student ID", "{request}"},
		{&m.teacherLogins, "records_service.teachers.logins", "Total number of successful teacher logins", "{login}"},
		{&m.teacherLoginFailures, "records_service.teachers.login_failures", "Total number of rejected teacher logins", "{login}"},
		{&m.teachersCreated, "records_service.teachers.created", "Total number of teacher accounts created", "{teacher}"},
		{&m.defaultTeachersSeeded, "records_service.teachers.seeded", "Total number of default teacher accounts inserted", "{teacher}"},
	}

	var err error
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func add(ctx context.Context, c metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, n, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordStudentCreated(ctx context.Context, status string) {
	if m != nil {
		add(ctx, m.studentsCreated, 1, attribute.String("status", status))
	}
}

func (m *Metrics) RecordStudentUpdated(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsUpdated, 1)
	}
}

func (m *Metrics) RecordStatusChange(ctx context.Context, from, to string) {
	if m != nil {
		add(ctx, m.studentStatusChanges, 1, attribute.String("from", from), attribute.String("to", to))
	}
}

func (m *Metrics) RecordStudentDeleted(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsDeleted, 1)
	}
}

func (m *Metrics) RecordStudentsListViewed(ctx context.Context) {
	if m != nil {
		add(ctx, m.studentsListViewed, 1)
	}
}

func (m *Metrics) RecordDuplicateStudentID(ctx context.Context) {
	if m != nil {
		add(ctx, m.duplicateStudentIDs, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	if success {
		add(ctx, m.teacherLogins, 1)
		return
	}
	add(ctx, m.teacherLoginFailures, 1)
}

func (m *Metrics) RecordTeacherCreated(ctx context.Context) {
	if m != nil {
		add(ctx, m.teachersCreated, 1)
	}
}

func (m *Metrics) RecordDefaultTeachersSeeded(ctx context.Context, n int) {
	if m != nil && n > 0 {
		add(ctx, m.defaultTeachersSeeded, int64(n))
	}
}

// NewMock creates a no-op Metrics instance for testing
func NewMock() *Metrics {
	return &Metrics{}
}
