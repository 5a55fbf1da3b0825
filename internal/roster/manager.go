package roster

import (
	"context"

	"records-service/internal/student"
)

// Manager pairs the API client with the client-side state. Every mutation is
// followed by a full re-fetch, successful or not.
type Manager struct {
	client *Client
	state  *State
}

func NewManager(client *Client, state *State) *Manager {
	return &Manager{client: client, state: state}
}

func (m *Manager) State() *State {
	return m.state
}

// Load replaces the state with a fresh copy of the server list.
func (m *Manager) Load(ctx context.Context) error {
	students, err := m.client.ListStudents(ctx)
	if err != nil {
		return err
	}
	m.state.SetAll(students)
	return nil
}

func (m *Manager) Create(ctx context.Context, s student.Student) (*student.Student, error) {
	created, err := m.client.CreateStudent(ctx, s)
	return created, m.reload(ctx, err)
}

func (m *Manager) Update(ctx context.Context, id string, patch student.Patch) (*student.Student, error) {
	updated, err := m.client.UpdateStudent(ctx, id, patch)
	return updated, m.reload(ctx, err)
}

func (m *Manager) SetStatus(ctx context.Context, id string, status student.Status) (*student.Student, error) {
	return m.Update(ctx, id, student.Patch{Status: &status})
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.reload(ctx, m.client.DeleteStudent(ctx, id))
}

// reload re-fetches and returns the mutation error if there was one,
// otherwise the re-fetch error.
func (m *Manager) reload(ctx context.Context, mutationErr error) error {
	loadErr := m.Load(ctx)
	if mutationErr != nil {
		return mutationErr
	}
	return loadErr
}
