package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/audit"
	"github.com/classicdental/dental-scheduler/internal/config"
	dbpkg "github.com/classicdental/dental-scheduler/internal/db"
	"github.com/classicdental/dental-scheduler/internal/infra/billing"
	"github.com/classicdental/dental-scheduler/internal/infra/storage"
	"github.com/classicdental/dental-scheduler/internal/infra/throttle"
	"github.com/classicdental/dental-scheduler/internal/middleware"
	"github.com/classicdental/dental-scheduler/internal/models"
)

// ======================================================
// FAKES
// ======================================================

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	fail  error
}

func (m *fakeMailer) SendResetCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[to] = code
	return nil
}

func (m *fakeMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type fakeAvatars struct {
	disabled bool
	got      []byte
}

func (f *fakeAvatars) PutAvatar(_ context.Context, userID uint, webp []byte) (string, error) {
	if f.disabled {
		return "", storage.ErrDisabled
	}
	f.got = webp
	return "https://cdn.example.com/avatars/1/a.webp", nil
}

type fakeCheckout struct {
	disabled bool
}

func (f *fakeCheckout) CreateLink(_ context.Context, ap *models.Appointment, tr *models.Treatment) (*billing.Link, error) {
	if f.disabled {
		return nil, billing.ErrDisabled
	}
	return &billing.Link{PreferenceID: "pref-1", InitPoint: "https://mp.example/pay/pref-1"}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) has(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Action == action {
			return true
		}
	}
	return false
}

// ======================================================
// HARNESS
// ======================================================

type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	db       *gorm.DB
	mail     *fakeMailer
	avatars  *fakeAvatars
	checkout *fakeCheckout
	audit    *recorder
	redis    *miniredis.Miniredis
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := dbpkg.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))
	require.NoError(t, dbpkg.SeedTreatments(db))

	mr := miniredis.RunT(t)
	rdb, err := throttle.NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		ResetCodeTTL:   15 * time.Minute,
		ResetCooldown:  time.Minute,
		ClinicTimezone: "UTC",
	}

	api := &testAPI{
		t:        t,
		router:   gin.New(),
		db:       db,
		mail:     &fakeMailer{},
		avatars:  &fakeAvatars{},
		checkout: &fakeCheckout{},
		audit:    &recorder{},
		redis:    mr,
	}

	RegisterRoutes(api.router, db, cfg, Deps{
		Log:      zap.NewNop(),
		Audit:    api.audit,
		Mailer:   api.mail,
		Cooldown: throttle.NewRedisCooldown(rdb, "reset-cooldown", cfg.ResetCooldown),
		Avatars:  api.avatars,
		Checkout: api.checkout,
		Limiter:  middleware.NewRateLimiter(1000, 1000),
	})
	return api
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its login token.
func (a *testAPI) register(username, role, email string) string {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"password": "secret123",
		"role":     role,
		"email":    email,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	return a.login(username, "secret123")
}

func (a *testAPI) login(username, password string) string {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/login", "", gin.H{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decode(a.t, w, &out)
	return out.Token
}

// create posts body and returns the new record id.
func (a *testAPI) create(token, path string, body any) uint {
	a.t.Helper()

	w := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		ID uint `json:"id"`
	}
	decode(a.t, w, &out)
	return out.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var out struct {
		Code    string `json:"error_code"`
		Message string `json:"message"`
	}
	decode(t, w, &out)
	return out.Code, out.Message
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

var errSMTPDown = errors.New("smtp down")
