package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"course_api/internal/app/seed"
	authadapters "course_api/internal/feature/auth/adapters"
	authhandler "course_api/internal/feature/auth/transport/handler"
	authusecase "course_api/internal/feature/auth/usecase"
	courseadapters "course_api/internal/feature/courses/adapters"
	coursehandler "course_api/internal/feature/courses/transport/handler"
	courseusecase "course_api/internal/feature/courses/usecase"
	"course_api/internal/platform/config"
	"course_api/internal/platform/db"
	platformhandler "course_api/internal/platform/http/handler"
	"course_api/internal/platform/password"
	"course_api/internal/platform/storage"
)

type testServer struct {
	router *gin.Engine
	store  *storage.Context
}

// newTestServer wires the full stack over an in-memory database loaded with the seed dataset.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	gdb, err := db.Open(db.Config{Driver: config.DriverSQLite, DSN: ":memory:", ConnectTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.ResetSchema(ctx, gdb))

	sqlxDB, err := db.SQLX(gdb, config.DriverSQLite)
	require.NoError(t, err)
	store := storage.NewContext(sqlxDB)

	userRepo := authadapters.NewUserRepository(store)
	courseRepo := courseadapters.NewCourseRepository(store)
	authUC := authusecase.NewAuthUsecase(userRepo, password.NewBcryptHasher(bcrypt.MinCost))
	courseUC := courseusecase.NewCourseUsecase(courseRepo)

	data, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, seed.Load(ctx, data, authUC, courseRepo))

	r := NewRouter(Deps{
		Users:         authhandler.NewUserHandler(authUC),
		Courses:       coursehandler.NewCourseHandler(courseUC),
		Authenticator: authUC,
		EmailInUse:    authUC.EmailInUse,
		HealthChecks:  []platformhandler.Check{sqlxDB.PingContext},
	})
	return &testServer{router: r, store: store}
}

type credentials struct{ email, password string }

var (
	joe   = &credentials{"joe@smith.com", "joepassword"}
	sally = &credentials{"sally@jones.com", "sallypassword"}
)

func (s *testServer) do(t *testing.T, method, path string, body any, as *credentials) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		req.SetBasicAuth(as.email, as.password)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.store.RetrieveValue(context.Background(), &n, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)))
	return n
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Errors
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/nope", "/courses", "/"} {
		w := s.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"message":"Route Not Found"}`, w.Body.String(), path)
	}
}

func TestGetUsers(t *testing.T) {
	s := newTestServer(t)

	t.Run("authenticated", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users", nil, joe)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "joe@smith.com", body["emailAddress"])
		assert.NotEqual(t, "joepassword", body["password"])
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(body["password"]), []byte("joepassword")))
	})

	tests := []struct {
		name string
		as   *credentials
	}{
		{"no credentials", nil},
		{"wrong password", &credentials{"joe@smith.com", "sallypassword"}},
		{"unknown user", &credentials{"nobody@example.com", "joepassword"}},
		{"email case differs", &credentials{"Joe@Smith.com", "joepassword"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/users", nil, tt.as)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"message":"Access Denied"}`, w.Body.String())
		})
	}
}

func TestPostUsers(t *testing.T) {
	newUser := map[string]string{
		"firstName":    "Sam",
		"lastName":     "Johnson",
		"emailAddress": "sam@johnson.com",
		"password":     "sampassword",
	}

	t.Run("registers and hashes", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/users", newUser, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Body.String())

		var stored string
		require.NoError(t, s.store.RetrieveValue(context.Background(), &stored,
			`SELECT "password" FROM "Users" WHERE "emailAddress" = ?`, "sam@johnson.com"))
		assert.NotEqual(t, "sampassword", stored)

		w = s.do(t, http.MethodGet, "/api/users", nil, &credentials{"sam@johnson.com", "sampassword"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newTestServer(t)
		before := s.count(t, "Users")

		dup := map[string]string{"firstName": "Joe", "lastName": "Again", "emailAddress": "joe@smith.com", "password": "x"}
		w := s.do(t, http.MethodPost, "/api/users", dup, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"Email address is already in use"}, decodeErrors(t, w))
		assert.Equal(t, before, s.count(t, "Users"))
	})

	t.Run("email uniqueness is case-sensitive", func(t *testing.T) {
		s := newTestServer(t)

		other := map[string]string{"firstName": "Joe", "lastName": "Upper", "emailAddress": "JOE@smith.com", "password": "x"}
		w := s.do(t, http.MethodPost, "/api/users", other, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("reports every failing field in order", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/users", map[string]string{"lastName": "Smith", "emailAddress": "not-an-email"}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{
			`Please provide a value for "firstName"`,
			`Please provide a valid email address for "emailAddress"`,
			`Please provide a value for "password"`,
		}, decodeErrors(t, w))
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		s := newTestServer(t)
		before := s.count(t, "Users")

		long := map[string]string{"firstName": "Sam", "lastName": "Johnson", "emailAddress": "sam@johnson.com", "password": strings.Repeat("p", 80)}
		w := s.do(t, http.MethodPost, "/api/users", long, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"Password must be at most 72 bytes"}, decodeErrors(t, w))
		assert.Equal(t, before, s.count(t, "Users"))
	})

	t.Run("non-string values are reported per field", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/users", `{"firstName":123,"lastName":false,"emailAddress":{},"password":"x"}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{
			`Please provide a value for "firstName"`,
			`Please provide a value for "lastName"`,
			`Please provide a value for "emailAddress"`,
		}, decodeErrors(t, w))
	})

	t.Run("empty body", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/users", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, decodeErrors(t, w), 4)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/users", `{"firstName":`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"Request body must be a valid JSON object"}, decodeErrors(t, w))
	})
}

func TestGetCourses(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/courses", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, map[string]string{"title": "Build a Basic Bookcase", "owner": "Joe Smith"}, list[0])
	assert.Equal(t, "Sally Jones", list[1]["owner"])
}

func TestGetCourse(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/courses/2", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Learn How to Program","owner":"Sally Jones"}`, w.Body.String())

	for _, id := range []string{"999", "abc"} {
		w = s.do(t, http.MethodGet, "/api/courses/"+id, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Course not found."}`, w.Body.String())
	}
}

func TestPostCourses(t *testing.T) {
	course := map[string]any{
		"title":           "Woodworking 101",
		"description":     "Cut, sand, finish.",
		"estimatedTime":   "4 hours",
		"materialsNeeded": nil,
	}

	t.Run("round trip", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/courses", course, sally)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Body.String())

		location := w.Header().Get("Location")
		require.True(t, strings.HasPrefix(location, "/courses/"), location)

		var newest uint
		require.NoError(t, s.store.RetrieveValue(context.Background(), &newest, `SELECT MAX("id") FROM "Courses"`))
		assert.Equal(t, fmt.Sprintf("/courses/%d", newest), location)

		w = s.do(t, http.MethodGet, "/api"+location, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"title":"Woodworking 101","owner":"Sally Jones"}`, w.Body.String())
	})

	t.Run("each creation points at its own row", func(t *testing.T) {
		s := newTestServer(t)

		seen := map[string]bool{}
		for i := 0; i < 3; i++ {
			body := map[string]string{"title": fmt.Sprintf("Course %d", i), "description": "d"}
			w := s.do(t, http.MethodPost, "/api/courses", body, joe)
			require.Equal(t, http.StatusCreated, w.Code)
			location := w.Header().Get("Location")
			assert.False(t, seen[location])
			seen[location] = true

			w = s.do(t, http.MethodGet, "/api"+location, nil, nil)
			assert.JSONEq(t, fmt.Sprintf(`{"title":"Course %d","owner":"Joe Smith"}`, i), w.Body.String())
		}
	})

	t.Run("empty title", func(t *testing.T) {
		s := newTestServer(t)
		before := s.count(t, "Courses")

		w := s.do(t, http.MethodPost, "/api/courses", map[string]string{"title": "", "description": "d"}, joe)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeErrors(t, w), `Please provide a value for "title"`)
		assert.Equal(t, before, s.count(t, "Courses"))
	})

	t.Run("wrong value types", func(t *testing.T) {
		for _, body := range []string{`{"title":123,"description":"d"}`, `{"title":false,"description":"d"}`, `{"title":{},"description":"d"}`} {
			s := newTestServer(t)

			w := s.do(t, http.MethodPost, "/api/courses", body, joe)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, []string{`Please provide a value for "title"`}, decodeErrors(t, w), body)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/courses", map[string]string{}, joe)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{
			`Please provide a value for "title"`,
			`Please provide a value for "description"`,
		}, decodeErrors(t, w))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		s := newTestServer(t)
		before := s.count(t, "Courses")

		w := s.do(t, http.MethodPost, "/api/courses", course, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, before, s.count(t, "Courses"))
	})
}

func TestPutCourse(t *testing.T) {
	update := map[string]string{"title": "Build an Advanced Bookcase", "description": "Harder."}

	t.Run("owner updates", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPut, "/api/courses/1", update, joe)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())

		w = s.do(t, http.MethodGet, "/api/courses/1", nil, nil)
		assert.JSONEq(t, `{"title":"Build an Advanced Bookcase","owner":"Joe Smith"}`, w.Body.String())
	})

	tests := []struct {
		name           string
		path           string
		body           any
		as             *credentials
		expectedStatus int
		expectedBody   string
	}{
		{"unauthenticated", "/api/courses/1", update, nil, http.StatusUnauthorized, `{"message":"Access Denied"}`},
		{"unauthenticated without body", "/api/courses/1", nil, nil, http.StatusUnauthorized, `{"message":"Access Denied"}`},
		{"not owner", "/api/courses/1", update, sally, http.StatusForbidden, `{"message":"You can only modify your own courses."}`},
		{"missing course", "/api/courses/999", update, joe, http.StatusNotFound, `{"message":"Course not found."}`},
		{"empty description", "/api/courses/1", map[string]string{"title": "t", "description": " "}, joe, http.StatusBadRequest, `{"errors":["Please provide a value for \"description\""]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := s.do(t, http.MethodPut, tt.path, tt.body, tt.as)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())

			w = s.do(t, http.MethodGet, "/api/courses/1", nil, nil)
			assert.JSONEq(t, `{"title":"Build a Basic Bookcase","owner":"Joe Smith"}`, w.Body.String(), "row is unmodified")
		})
	}
}

func TestDeleteCourse(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodDelete, "/api/courses/1", nil, joe)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, http.MethodGet, "/api/courses/1", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing course is a no-op", func(t *testing.T) {
		s := newTestServer(t)
		before := s.count(t, "Courses")

		w := s.do(t, http.MethodDelete, "/api/courses/999", nil, joe)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, before, s.count(t, "Courses"))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodDelete, "/api/courses/1", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = s.do(t, http.MethodGet, "/api/courses/1", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not owner", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodDelete, "/api/courses/1", nil, sally)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, http.MethodGet, "/api/courses/1", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestUserDeleteCascadesToCourses(t *testing.T) {
	s := newTestServer(t)

	_, err := s.store.Execute(context.Background(), `DELETE FROM "Users" WHERE "emailAddress" = ?`, "sally@jones.com")
	require.NoError(t, err)

	var owned int
	require.NoError(t, s.store.RetrieveValue(context.Background(), &owned, `SELECT COUNT(*) FROM "Courses" WHERE "userId" = 2`))
	assert.Zero(t, owned)

	w := s.do(t, http.MethodGet, "/api/courses", nil, nil)
	var list []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Joe Smith", list[0]["owner"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "authorization")
}

func TestCORSConfig_RestrictedOrigins(t *testing.T) {
	cfg := corsConfig([]string{"http://localhost:3000"})

	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
	assert.Equal(t, []string{"Location"}, cfg.ExposeHeaders)
	assert.NoError(t, cfg.Validate())
}
