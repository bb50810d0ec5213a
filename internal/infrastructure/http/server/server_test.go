package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	gormLogger "gorm.io/gorm/logger"

	userapp "github.com/fitforge/v1/internal/application/user"
	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/domain/plan"
	"github.com/fitforge/v1/internal/domain/user"
	"github.com/fitforge/v1/internal/infrastructure/config"
	"github.com/fitforge/v1/internal/infrastructure/http/handlers"
	"github.com/fitforge/v1/internal/infrastructure/persistence/sqlite"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/pkg/errors"
)

// stubPlanService returns canned results so routing and error mapping
// can be exercised without a model behind them.
type stubPlanService struct {
	dietResult    *inbound.DietResult
	dietErr       error
	workoutResult *inbound.WorkoutResult
	workoutErr    error

	lastUserID uuid.UUID
	lastDiet   inbound.DietRequest
}

func (s *stubPlanService) GenerateDiet(ctx context.Context, userID uuid.UUID, req inbound.DietRequest) (*inbound.DietResult, error) {
	s.lastUserID = userID
	s.lastDiet = req
	return s.dietResult, s.dietErr
}

func (s *stubPlanService) GenerateWorkout(ctx context.Context, userID uuid.UUID, req inbound.WorkoutRequest) (*inbound.WorkoutResult, error) {
	s.lastUserID = userID
	return s.workoutResult, s.workoutErr
}

func (s *stubPlanService) CurrentDiet(ctx context.Context, userID uuid.UUID, date time.Time) (*inbound.DietResult, error) {
	return s.dietResult, s.dietErr
}

func (s *stubPlanService) CurrentWorkout(ctx context.Context, userID uuid.UUID) (*inbound.WorkoutResult, error) {
	return s.workoutResult, s.workoutErr
}

// memUserRepo is a map-backed user store for router level tests.
type memUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email()]; ok {
		return user.ErrEmailTaken
	}
	r.byID[u.ID()] = u
	r.byEmail[u.Email()] = u
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID()]; !ok {
		return user.ErrUserNotFound
	}
	r.byID[u.ID()] = u
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (r *memUserRepo) UpdateModeration(ctx context.Context, id uuid.UUID, state moderation.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.SetModeration(state)
	return nil
}

func (r *memUserRepo) AddWorkoutRun(ctx context.Context, id uuid.UUID, run user.WorkoutRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.LogWorkout(run)
	return nil
}

type fixture struct {
	router http.Handler
	plans  *stubPlanService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Name = "FitForge"
	cfg.App.Version = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 10 * time.Second
	cfg.Server.IdleTimeout = time.Minute

	logger := zaptest.NewLogger(t)
	db, err := sqlite.SetupDatabase("", gormLogger.Silent)
	require.NoError(t, err)

	users := userapp.NewUserService(newMemUserRepo(), nil, "test-secret", logger)
	plans := &stubPlanService{}

	apiHandlers := handlers.NewAPIHandlers(plans, users, logger)
	srv := NewAPIServer(cfg, apiHandlers, users, db, logger)

	return &fixture{router: srv.routes(), plans: plans}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test Person",
		"password": "long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"service":"FitForge"`)

	rec = f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	f.register(t, "coach@example.com")

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "coach@example.com",
		"name":     "Test Person",
		"password": "long-enough-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "coach@example.com",
		"password": "long-enough-password",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "coach@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"name":     "Test Person",
		"password": "long-enough-password",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/profile/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/profile/", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "athlete@example.com")

	rec := f.do(t, http.MethodPut, "/api/v1/profile/", token, map[string]interface{}{
		"height_cm":      181,
		"weight_kg":      79.5,
		"birth_date":     "1992-04-11",
		"sex":            "male",
		"activity_level": "moderate",
		"goal":           "gain_muscle",
		"allergies":      []string{"peanuts"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/profile/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"birth_date":"1992-04-11"`)
	assert.Contains(t, rec.Body.String(), "peanuts")
}

func TestGenerateDietRoute(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "dieter@example.com")

	f.plans.dietResult = &inbound.DietResult{
		Plan:    &plan.Diet{Calories: 2400, Protein: 180, Fat: 80, Carbohydrates: 250},
		RawText: `{"calories":2400,"protein":180,"fat":80,"carbohydrates":250}`,
	}

	rec := f.do(t, http.MethodPost, "/api/v1/plans/diet", token, map[string]interface{}{
		"modifying":     true,
		"modifications": "more protein please",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"calories":2400`)
	assert.True(t, f.plans.lastDiet.Modifying)
	assert.Equal(t, "more protein please", f.plans.lastDiet.UserModifications)
	assert.NotEqual(t, uuid.Nil, f.plans.lastUserID)
}

func TestPlanErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    *errors.AppError
		status int
	}{
		{"ban", errors.New(errors.CodeBanActive, "You are banned until Mon, 01 Sep 2025 10:00:00 UTC"), http.StatusForbidden},
		{"cooldown", errors.New(errors.CodeCooldownActive, "You can regenerate your workout plan after Mon, 01 Sep 2025 10:00:00 UTC"), http.StatusTooManyRequests},
		{"off topic", errors.New(errors.CodeOffTopic, "Type only about workout"), http.StatusUnprocessableEntity},
		{"upstream", errors.New(errors.CodeExternalServiceError, "Something went wrong, please try again later"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			token := f.register(t, fmt.Sprintf("%s@example.com", strings.ReplaceAll(tc.name, " ", "")))
			f.plans.workoutErr = tc.err

			rec := f.do(t, http.MethodPost, "/api/v1/plans/workout", token, map[string]interface{}{})

			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.err.Message)
		})
	}
}

func TestWorkoutLogRoutes(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "lifter@example.com")

	rec := f.do(t, http.MethodPost, "/api/v1/workouts/", token, map[string]string{
		"day":   "Monday",
		"notes": "solid session",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/workouts/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Monday")
	assert.Contains(t, rec.Body.String(), "solid session")
}

func TestJSONOnlyRejectsOtherContentTypes(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("email=a&password=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
