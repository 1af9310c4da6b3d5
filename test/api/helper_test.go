package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/naijasafe/emergency-api/internal/config"
	"github.com/naijasafe/emergency-api/internal/email"
	"github.com/naijasafe/emergency-api/internal/handler"
	alertHandler "github.com/naijasafe/emergency-api/internal/handler/alert"
	authHandler "github.com/naijasafe/emergency-api/internal/handler/auth"
	dashboardHandler "github.com/naijasafe/emergency-api/internal/handler/dashboard"
	patientHandler "github.com/naijasafe/emergency-api/internal/handler/patient"
	taskHandler "github.com/naijasafe/emergency-api/internal/handler/task"
	volunteerHandler "github.com/naijasafe/emergency-api/internal/handler/volunteer"
	"github.com/naijasafe/emergency-api/internal/middleware"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/router"
	alertService "github.com/naijasafe/emergency-api/internal/service/alert"
	authService "github.com/naijasafe/emergency-api/internal/service/auth"
	dashboardService "github.com/naijasafe/emergency-api/internal/service/dashboard"
	patientService "github.com/naijasafe/emergency-api/internal/service/patient"
	taskService "github.com/naijasafe/emergency-api/internal/service/task"
	volunteerService "github.com/naijasafe/emergency-api/internal/service/volunteer"
	"github.com/naijasafe/emergency-api/internal/session"
)

const fallbackEmail = "dispatch@naijasafe.example"

// memStore backs the API with in-memory tables so the flow tests run
// without Postgres.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*model.User
	patients   map[int64]*model.Patient
	alerts     map[int64]*model.SOSAlert
	tasks      map[int64]*model.Task
	volunteers map[uuid.UUID]*model.Volunteer
	events     []*model.AlertEvent
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]*model.User),
		patients:   make(map[int64]*model.Patient),
		alerts:     make(map[int64]*model.SOSAlert),
		tasks:      make(map[int64]*model.Task),
		volunteers: make(map[uuid.UUID]*model.Volunteer),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// promoteToStaff flips the staff flag on a registered account. Tokens
// issued before the flip keep the old capability, so callers re-login.
func (s *memStore) promoteToStaff(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u.IsStaff = true
		}
	}
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.UpdatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

type memPatientRepo struct{ s *memStore }

func (r *memPatientRepo) Create(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	patient.ID = r.s.id()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()
	cp := *patient
	r.s.patients[patient.ID] = &cp
	return nil
}

func (r *memPatientRepo) Get(_ context.Context, id int64) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *memPatientRepo) GetByUser(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPatientRepo) Update(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	patient.UpdatedAt = time.Now()
	cp := *patient
	r.s.patients[patient.ID] = &cp
	return nil
}

type memAlertRepo struct{ s *memStore }

func (r *memAlertRepo) Create(_ context.Context, alert *model.SOSAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alert.ID = r.s.id()
	alert.Status = model.AlertStatusPending
	alert.CreatedAt = time.Now()
	cp := *alert
	r.s.alerts[alert.ID] = &cp
	return nil
}

func (r *memAlertRepo) get(id int64) (*model.SOSAlert, error) {
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	if cp.PatientID != nil {
		if p, ok := r.s.patients[*cp.PatientID]; ok {
			mrn, name := p.MedicalRecordNumber, p.FullName
			cp.PatientMRN = &mrn
			cp.PatientName = &name
		}
	}
	return &cp, nil
}

func (r *memAlertRepo) Get(_ context.Context, id int64) (*model.SOSAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(id)
}

func (r *memAlertRepo) UpdateStatus(_ context.Context, id int64, status model.AlertStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return fmt.Errorf("alert %d does not exist", id)
	}
	a.Status = status
	return nil
}

func (r *memAlertRepo) List(_ context.Context, filter *model.AlertFilter) ([]*model.SOSAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.SOSAlert
	for id := range r.s.alerts {
		a, _ := r.get(id)
		if filter != nil && filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter != nil && filter.SearchMRN != "" {
			if a.PatientMRN == nil || !strings.Contains(strings.ToLower(*a.PatientMRN), strings.ToLower(filter.SearchMRN)) {
				continue
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter != nil && filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memAlertRepo) CountByStatus(_ context.Context, status model.AlertStatus) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, a := range r.s.alerts {
		if a.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *memAlertRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.alerts), nil
}

type memTaskRepo struct{ s *memStore }

func (r *memTaskRepo) Create(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task.ID = r.s.id()
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	cp := *task
	r.s.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) Get(_ context.Context, id int64) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[task.ID]; !ok {
		return sql.ErrNoRows
	}
	task.UpdatedAt = time.Now()
	cp := *task
	r.s.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) UpdateStatus(_ context.Context, id int64, status model.TaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

func (r *memTaskRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.IsActive = active
	t.UpdatedAt = time.Now()
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tasks, id)
	return nil
}

func (r *memTaskRepo) List(_ context.Context, filter *model.TaskFilter) ([]*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Task
	for _, t := range r.s.tasks {
		if filter != nil && filter.ActiveOnly && !t.IsActive {
			continue
		}
		if filter != nil && filter.Urgency != "" && t.Urgency != filter.Urgency {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter != nil && filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memTaskRepo) CountActive(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, t := range r.s.tasks {
		if t.IsActive {
			count++
		}
	}
	return count, nil
}

type memVolunteerRepo struct{ s *memStore }

func (r *memVolunteerRepo) Upsert(_ context.Context, volunteer *model.Volunteer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.volunteers[volunteer.UserID]; ok {
		volunteer.ID = existing.ID
		volunteer.CreatedAt = existing.CreatedAt
	} else {
		volunteer.ID = r.s.id()
		volunteer.CreatedAt = time.Now()
	}
	volunteer.UpdatedAt = time.Now()
	cp := *volunteer
	r.s.volunteers[volunteer.UserID] = &cp
	return nil
}

func (r *memVolunteerRepo) GetByUser(_ context.Context, userID uuid.UUID) (*model.Volunteer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.volunteers[userID]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *memVolunteerRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.volunteers), nil
}

type memEventRepo struct{ s *memStore }

func (r *memEventRepo) Create(_ context.Context, event *model.AlertEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = uuid.New()
	event.Status = model.EventStatusPending
	event.CreatedAt = time.Now()
	cp := *event
	r.s.events = append(r.s.events, &cp)
	return nil
}

func (r *memEventRepo) GetPending(_ context.Context, limit int) ([]*model.AlertEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.AlertEvent
	for _, e := range r.s.events {
		if e.Status != model.EventStatusPending {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memEventRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.ID == id {
			now := time.Now()
			e.Status = model.EventStatusProcessed
			e.ProcessedAt = &now
		}
	}
	return nil
}

func (r *memEventRepo) MarkRetry(_ context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.ID == id {
			e.Status = model.EventStatusRetry
			e.Error = &errMsg
			e.RetryAt = &retryAt
		}
	}
	return nil
}

func (r *memEventRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []*model.AlertEvent
	var removed int64
	for _, e := range r.s.events {
		if e.Status == model.EventStatusProcessed && e.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.s.events = kept
	return removed, nil
}

type testServer struct {
	srv           *httptest.Server
	store         *memStore
	metricsPrefix string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := newMemStore()
	userRepo := &memUserRepo{s: store}
	patientRepo := &memPatientRepo{s: store}
	alertRepo := &memAlertRepo{s: store}
	taskRepo := &memTaskRepo{s: store}
	volunteerRepo := &memVolunteerRepo{s: store}
	eventRepo := &memEventRepo{s: store}

	jwtCfg := config.JWTConfig{
		Secret:             "test-secret",
		RefreshSecret:      "test-refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	}

	logger := zerolog.Nop()
	emailSvc := email.NewLogService(logger)

	authSvc := authService.NewService(userRepo, jwtCfg)
	patientSvc := patientService.NewService(patientRepo)
	alertSvc := alertService.NewService(alertRepo, patientRepo, eventRepo, emailSvc, fallbackEmail, logger)
	taskSvc := taskService.NewService(taskRepo)
	volunteerSvc := volunteerService.NewService(volunteerRepo)
	dashboardSvc := dashboardService.NewService(alertRepo, taskRepo, volunteerRepo)

	sessions := session.NewStore(time.Hour)
	authMw := middleware.NewAuthMiddleware(authSvc, volunteerSvc)

	// Each test server registers its own collectors, so the prefix
	// must be unique per instance.
	metricsPrefix := "test_" + uuid.New().String()[:8]

	r := router.NewRouter(
		authMw,
		authHandler.NewHandler(authSvc, sessions),
		alertHandler.NewHandler(alertSvc, 200),
		taskHandler.NewHandler(taskSvc),
		patientHandler.NewHandler(patientSvc, userRepo, sessions),
		volunteerHandler.NewHandler(volunteerSvc),
		dashboardHandler.NewHandler(dashboardSvc),
		handler.NewHandler(nil),
		router.RouterConfig{
			RateLimit:     rate.Limit(10000),
			RateBurst:     10000,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: metricsPrefix,
		},
	)
	r.Setup()

	srv := httptest.NewServer(r.Engine())
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: store, metricsPrefix: metricsPrefix}
}

type testResponse struct {
	Code    int
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	List    []interface{}          `json:"-"`
	Raw     map[string]interface{} `json:"-"`
}

func (r testResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r testResponse) GetString(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}, token string) testResponse {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.srv.URL+"/api/v1"+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	out := testResponse{Code: resp.StatusCode}
	if len(raw) == 0 {
		return out
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("failed to decode response %q: %v", raw, err)
	}
	out.Raw = generic
	if s, ok := generic["status"].(string); ok {
		out.Status = s
	}
	if m, ok := generic["message"].(string); ok {
		out.Message = m
	}
	switch data := generic["data"].(type) {
	case map[string]interface{}:
		out.Data = data
	case []interface{}:
		out.List = data
	}
	return out
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%s@example.com", prefix, uuid.New().String()[:8])
}

// registerUser creates an account and returns its access token.
func (ts *testServer) registerUser(t *testing.T, email string) string {
	t.Helper()

	resp := ts.request(t, "POST", "/auth/register", map[string]interface{}{
		"full_name": "Test User",
		"email":     email,
		"password":  "password1234",
	}, "")
	if !resp.IsSuccess() {
		t.Fatalf("failed to register %s: %s", email, resp.Message)
	}
	tokens := resp.Data["tokens"].(map[string]interface{})
	return tokens["access_token"].(string)
}

// registerStaff creates an account, flips the staff flag, and logs in
// again so the token carries the capability.
func (ts *testServer) registerStaff(t *testing.T, email string) string {
	t.Helper()

	ts.registerUser(t, email)
	ts.store.promoteToStaff(email)

	resp := ts.request(t, "POST", "/auth/login", map[string]interface{}{
		"email":    email,
		"password": "password1234",
	}, "")
	if !resp.IsSuccess() {
		t.Fatalf("failed to log in staff %s: %s", email, resp.Message)
	}
	return resp.GetString("access_token")
}
