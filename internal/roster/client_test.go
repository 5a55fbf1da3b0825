package roster_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"records-service/common/httputil"
	"records-service/internal/roster"
	"records-service/internal/student"
	"records-service/internal/teacher"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory stand-in for the records API.
type fakeAPI struct {
	mu       sync.Mutex
	students []student.Student
	lists    int
	token    string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{token: "good-token"}

	r := chi.NewRouter()
	r.Post("/api/auth/login", api.login)
	r.Post("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Group(func(r chi.Router) {
		r.Use(api.requireToken)
		r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "teacher": teacher.Summary{Email: "admin@school.edu"}})
		})
		r.Get("/api/students", api.list)
		r.Post("/api/students", api.create)
		r.Put("/api/students/{id}", api.update)
		r.Delete("/api/students/{id}", api.delete)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+a.token {
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req["email"] != "admin@school.edu" || req["password"] != "admin123" {
		httputil.RespondWithJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid email or password"})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"teacher": teacher.Summary{ID: "t-1", Email: req["email"]},
		"token":   a.token,
	})
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lists++
	httputil.RespondWithJSON(w, http.StatusOK, a.students)
}

func (a *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var s student.Student
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.students {
		if existing.StudentID == s.StudentID {
			httputil.RespondWithError(w, http.StatusBadRequest, "Student ID already exists")
			return
		}
	}
	s.ID = s.StudentID + "-id"
	if s.Status == "" {
		s.Status = student.StatusPending
	}
	a.students = append(a.students, s)
	httputil.RespondWithJSON(w, http.StatusCreated, s)
}

func (a *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	var p student.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.students {
		if a.students[i].ID == chi.URLParam(r, "id") {
			if p.Status != nil {
				a.students[i].Status = *p.Status
			}
			if p.Course != nil {
				a.students[i].Course = *p.Course
			}
			httputil.RespondWithJSON(w, http.StatusOK, a.students[i])
			return
		}
	}
	httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
}

func (a *fakeAPI) delete(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.students[:0]
	for _, s := range a.students {
		if s.ID != chi.URLParam(r, "id") {
			kept = append(kept, s)
		}
	}
	a.students = kept
	w.WriteHeader(http.StatusNoContent)
}

func (a *fakeAPI) listCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lists
}

func TestClient_Login(t *testing.T) {
	_, srv := newFakeAPI(t)
	client := roster.NewClient(srv.URL + "/")
	ctx := context.Background()

	session, err := client.Login(ctx, "admin@school.edu", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "good-token", session.Token)
	assert.Equal(t, "admin@school.edu", session.Teacher.Email)

	_, err = client.Login(ctx, "admin@school.edu", "wrong")
	require.Error(t, err)
	var apiErr *roster.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Error())
	assert.True(t, roster.IsStatus(err, http.StatusUnauthorized))

	require.NoError(t, client.Logout(ctx))
}

func TestClient_TokenRequired(t *testing.T) {
	_, srv := newFakeAPI(t)
	ctx := context.Background()

	_, err := roster.NewClient(srv.URL).ListStudents(ctx)
	assert.True(t, roster.IsStatus(err, http.StatusUnauthorized))

	client := roster.NewClient(srv.URL, roster.WithToken("good-token"))
	students, err := client.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)

	me, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@school.edu", me.Email)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := roster.NewClient(url).ListStudents(context.Background())
	require.Error(t, err)

	var netErr *roster.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "GET /api/students", netErr.Op)
	assert.False(t, roster.IsStatus(err, http.StatusInternalServerError))
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := roster.NewClient(srv.URL).ListStudents(context.Background())
	var apiErr *roster.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "request failed with status 502", apiErr.Message)
}

func TestManager_RefetchAfterEveryMutation(t *testing.T) {
	api, srv := newFakeAPI(t)
	client := roster.NewClient(srv.URL)
	ctx := context.Background()

	session, err := client.Login(ctx, "admin@school.edu", "admin123")
	require.NoError(t, err)
	client.SetToken(session.Token)

	mgr := roster.NewManager(client, roster.NewState())
	require.NoError(t, mgr.Load(ctx))
	assert.Equal(t, 1, api.listCount())

	created, err := mgr.Create(ctx, student.Student{StudentID: "A-10", Course: "BSIT"})
	require.NoError(t, err)
	assert.Equal(t, student.StatusPending, created.Status)
	assert.Equal(t, 2, api.listCount())
	assert.Equal(t, []string{"A-10"}, ids(mgr.State().All()))

	_, err = mgr.Create(ctx, student.Student{StudentID: "A-2", Course: "BSCS"})
	require.NoError(t, err)

	// failed mutation still refreshes
	_, err = mgr.Create(ctx, student.Student{StudentID: "A-2"})
	require.Error(t, err)
	assert.Equal(t, "Student ID already exists", err.Error())
	assert.Equal(t, 4, api.listCount())

	updated, err := mgr.SetStatus(ctx, created.ID, student.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, student.StatusActive, updated.Status)
	assert.Equal(t, "BSIT", updated.Course)
	assert.Equal(t, 5, api.listCount())
	assert.Equal(t, []string{"A-10"}, ids(mgr.State().ActiveOnly()))

	_, err = mgr.SetStatus(ctx, "missing", student.StatusActive)
	assert.True(t, roster.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, 6, api.listCount())

	require.NoError(t, mgr.Delete(ctx, created.ID))
	require.NoError(t, mgr.Delete(ctx, created.ID))
	assert.Equal(t, 8, api.listCount())
	assert.Equal(t, []string{"A-2"}, ids(mgr.State().All()))

	sorted := mgr.State().Filtered(roster.Criteria{Sort: roster.SortAsc})
	assert.Equal(t, []string{"A-2"}, ids(sorted))
}
