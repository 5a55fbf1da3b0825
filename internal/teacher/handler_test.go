package teacher_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"records-service/common/logger"
	commonmetrics "records-service/common/metrics"
	"records-service/internal/metrics"
	"records-service/internal/teacher"
	"records-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTeacherService_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, (*teacher.Teacher)(nil))

	repo := teacher.NewRepository(pgContainer.DB, commonmetrics.NewMock())
	service := teacher.NewService(repo, metrics.NewMock(), logger.Discard(), teacher.WithBcryptCost(bcrypt.MinCost))
	handler := teacher.NewHandler(service, logger.Discard())

	router := chi.NewRouter()
	handler.RegisterPublicRoutes(router)
	handler.RegisterProtectedRoutes(router)

	ctx := context.Background()

	post := func(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
		t.Helper()
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("SeedDefaults_OnEmptyTable", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")

		w := post(t, "/setup/default-teachers", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, float64(2), resp["count"])
		assert.Equal(t, "Default teachers created", resp["message"])

		admin, err := service.Authenticate(ctx, "admin@school.edu", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "Administration", admin.Department)

		demo, err := service.Authenticate(ctx, "teacher@school.edu", "teacher123")
		require.NoError(t, err)
		assert.Equal(t, "General Education", demo.Department)
	})

	t.Run("SeedDefaults_NoOpWhenTeachersExist", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")

		_, err := service.CreateTeacher(ctx, teacher.CreateRequest{
			Email: "solo@school.edu", Password: "secret1", FirstName: "Solo", LastName: "Teacher", Department: "Math",
		})
		require.NoError(t, err)

		result, err := service.SeedDefaults(ctx)
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, 1, result.Count)

		_, err = service.Authenticate(ctx, "admin@school.edu", "admin123")
		assert.ErrorIs(t, err, teacher.ErrInvalidCredentials)
	})

	t.Run("SeedDefaults_Twice", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")

		first, err := service.SeedDefaults(ctx)
		require.NoError(t, err)
		assert.True(t, first.Created)

		second, err := service.SeedDefaults(ctx)
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, 2, second.Count)
	})

	t.Run("Authenticate_Failures", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")
		_, err := service.SeedDefaults(ctx)
		require.NoError(t, err)

		_, err = service.Authenticate(ctx, "admin@school.edu", "wrong")
		assert.ErrorIs(t, err, teacher.ErrInvalidCredentials)

		_, err = service.Authenticate(ctx, "nobody@school.edu", "admin123")
		assert.ErrorIs(t, err, teacher.ErrInvalidCredentials)

		// email match is case-sensitive
		_, err = service.Authenticate(ctx, "ADMIN@school.edu", "admin123")
		assert.ErrorIs(t, err, teacher.ErrInvalidCredentials)
	})

	t.Run("CreateTeacher_Success", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")

		w := post(t, "/teachers", map[string]string{
			"email":      "new@school.edu",
			"password":   "secret1",
			"firstName":  "New",
			"lastName":   "Teacher",
			"department": "Science",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, true, resp["success"])
		created, ok := resp["teacher"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "new@school.edu", created["email"])
		assert.NotContains(t, created, "password")
	})

	t.Run("CreateTeacher_DuplicateEmail", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")

		payload := map[string]string{
			"email": "dup@school.edu", "password": "secret1", "firstName": "A", "lastName": "B", "department": "C",
		}
		require.Equal(t, http.StatusCreated, post(t, "/teachers", payload).Code)

		w := post(t, "/teachers", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "Email already exists", resp["error"])
	})

	t.Run("CreateTeacher_Invalid", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")

		w := post(t, "/teachers", map[string]string{"email": "not-an-email", "password": "secret1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListTeachers_OmitsPasswords", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "teachers")
		_, err := service.SeedDefaults(ctx)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/teachers", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var list []map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 2)
		for _, item := range list {
			assert.NotContains(t, item, "password")
		}
	})
}
