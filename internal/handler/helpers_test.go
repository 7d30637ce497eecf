package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/hostel-saas/internal/di"
	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/handler"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/internal/service"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
)

const (
	testSecret = "handler-test-secret"
	testIssuer = "hostel-saas-test"
)

var testNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

type apiEnv struct {
	router   *gin.Engine
	store    *repository.Store
	events   *service.MemoryEventPublisher
	sink     *middleware.MemoryAuditSink
	auditLog *middleware.AuditLogger
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		RequestID string `json:"requestId"`
	} `json:"meta"`
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore().Store()
	events := &service.MemoryEventPublisher{}
	sink := &middleware.MemoryAuditSink{}

	container := di.NewContainer(&di.ContainerConfig{
		Store:     store,
		Clock:     service.FixedClock{At: testNow},
		Publisher: events,
		Auth: service.AuthConfig{
			JWTSecret:  testSecret,
			Issuer:     testIssuer,
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		Version: "test",
	})

	auditCfg := middleware.DefaultAuditConfig(sink)
	auditCfg.FlushInterval = 10 * time.Millisecond
	auditLog := middleware.NewAuditLogger(auditCfg, nil)
	t.Cleanup(func() { _ = auditLog.Close() })

	router := handler.NewRouter(container.Handlers(), handler.RouterConfig{
		JWTSecret:   testSecret,
		JWTIssuer:   testIssuer,
		CORSOrigins: []string{"http://localhost:3000"},
		Audit:       auditLog,
		Metrics:     middleware.NewHTTPMetrics("hostel_test"),
	})

	return &apiEnv{router: router, store: store, events: events, sink: sink, auditLog: auditLog}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func tokenFor(t *testing.T, identity domain.Identity) string {
	t.Helper()
	tok, _, err := middleware.GenerateToken(testSecret, testIssuer, time.Hour, middleware.Claims{
		UserID:   identity.UserID,
		Email:    identity.UserID + "@example.com",
		Role:     string(identity.Role),
		HostelID: identity.HostelID,
	})
	require.NoError(t, err)
	return tok
}

func staffOf(hostelID string) domain.Identity {
	return domain.Identity{UserID: uuid.NewString(), HostelID: hostelID, Role: domain.RoleStaff}
}

func adminOf(hostelID string) domain.Identity {
	return domain.Identity{UserID: uuid.NewString(), HostelID: hostelID, Role: domain.RoleAdmin}
}

func superAdmin() domain.Identity {
	return domain.Identity{UserID: uuid.NewString(), Role: domain.RoleSuperAdmin}
}

func (e *apiEnv) hostel(t *testing.T, slug string) *domain.Hostel {
	t.Helper()
	h := &domain.Hostel{
		ID:        uuid.NewString(),
		Name:      "Hostel " + slug,
		Slug:      slug,
		Plan:      domain.PlanFree,
		IsActive:  true,
		Settings:  domain.HostelSettings{}.WithDefaults(),
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, e.store.Hostels.Create(context.Background(), h))
	return h
}

func (e *apiEnv) room(t *testing.T, hostelID, number string, typ domain.RoomType) *domain.Room {
	t.Helper()
	r := &domain.Room{
		ID:            uuid.NewString(),
		HostelID:      hostelID,
		RoomNumber:    number,
		Type:          typ,
		Beds:          2,
		MaxGuests:     2,
		PricePerNight: 40,
		Amenities:     []string{},
		Images:        []string{},
		IsAvailable:   true,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	require.NoError(t, e.store.Rooms.Create(context.Background(), r))
	return r
}

func (e *apiEnv) guest(t *testing.T, hostelID string) *domain.Guest {
	t.Helper()
	g := &domain.Guest{
		ID:        uuid.NewString(),
		HostelID:  hostelID,
		FirstName: "Ana",
		LastName:  "Silva",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, e.store.Guests.Create(context.Background(), g))
	return g
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
