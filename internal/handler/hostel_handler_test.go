package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/export"
)

func TestHostelUpdate_WrongTenantForbiddenRegardlessOfPayload(t *testing.T) {
	api := newAPI(t)
	a := api.hostel(t, "alpha")
	b := api.hostel(t, "bravo")
	tok := tokenFor(t, staffOf(a.ID))

	payloads := []interface{}{
		map[string]interface{}{"name": "Renamed"},
		map[string]interface{}{"slug": "NOT A SLUG"},
		map[string]interface{}{},
		"{not json",
	}
	for _, p := range payloads {
		w := api.do(t, http.MethodPut, "/api/hostels/"+b.ID, tok, p)
		assertStatus(t, w, http.StatusForbidden)
		assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)
	}

	// hostel b is unchanged
	got, err := api.store.Hostels.GetByID(t.Context(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hostel bravo", got.Name)
}

func TestHostelUpdate_SlugChangeRequiresSuperAdmin(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")

	w := api.do(t, http.MethodPut, "/api/hostels/"+h.ID, tokenFor(t, adminOf(h.ID)), map[string]string{"slug": "alpha-new"})
	assertStatus(t, w, http.StatusForbidden)

	w = api.do(t, http.MethodPut, "/api/hostels/"+h.ID, tokenFor(t, superAdmin()), map[string]string{"slug": "alpha-new"})
	assertStatus(t, w, http.StatusOK)

	var body dto.HostelEnvelope
	decodeData(t, w, &body)
	assert.Equal(t, "alpha-new", body.Hostel.Slug)
}

func TestHostelUpdate_SameTenantCanRename(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")

	w := api.do(t, http.MethodPut, "/api/hostels/"+h.ID, tokenFor(t, adminOf(h.ID)), map[string]interface{}{
		"name":     "Alpha House",
		"settings": map[string]string{"currency": "EUR"},
	})
	assertStatus(t, w, http.StatusOK)

	var body dto.HostelEnvelope
	decodeData(t, w, &body)
	assert.Equal(t, "Alpha House", body.Hostel.Name)
	assert.Equal(t, "EUR", body.Hostel.Settings.Currency)
	assert.Equal(t, "UTC", body.Hostel.Settings.Timezone)
}

func TestHostelUpdate_UnknownHostelIsNotFound(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")

	w := api.do(t, http.MethodPut, "/api/hostels/00000000-0000-0000-0000-000000000000", tokenFor(t, staffOf(h.ID)), map[string]string{"name": "x"})
	assertStatus(t, w, http.StatusNotFound)
}

func TestHostelUpdate_RequiresAField(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")

	w := api.do(t, http.MethodPut, "/api/hostels/"+h.ID, tokenFor(t, adminOf(h.ID)), map[string]string{})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestHostelList_SuperAdminOnly(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")
	api.hostel(t, "bravo")

	w := api.do(t, http.MethodGet, "/api/hostels", tokenFor(t, adminOf(h.ID)), nil)
	assertStatus(t, w, http.StatusForbidden)
	assert.Contains(t, decode(t, w).Error.Message, "/api/hostels/my-hostel")

	w = api.do(t, http.MethodGet, "/api/hostels?limit=1", tokenFor(t, superAdmin()), nil)
	assertStatus(t, w, http.StatusOK)

	var body dto.ListHostelsResponse
	decodeData(t, w, &body)
	assert.Len(t, body.Hostels, 1)
	assert.Equal(t, int64(2), body.Pagination.Total)
	assert.Equal(t, 2, body.Pagination.Pages)
}

func TestHostelCreate_DuplicateSlugConflict(t *testing.T) {
	api := newAPI(t)
	api.hostel(t, "alpha")
	tok := tokenFor(t, superAdmin())

	w := api.do(t, http.MethodPost, "/api/hostels", tok, map[string]string{"name": "Bravo", "slug": "bravo"})
	assertStatus(t, w, http.StatusCreated)

	var body dto.HostelEnvelope
	decodeData(t, w, &body)
	assert.Equal(t, domain.PlanFree, body.Hostel.Plan)
	assert.Equal(t, "USD", body.Hostel.Settings.Currency)

	w = api.do(t, http.MethodPost, "/api/hostels", tok, map[string]string{"name": "Alpha Two", "slug": "alpha"})
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "CONFLICT", decode(t, w).Error.Code)
}

func TestHostelStatus(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")

	tests := []struct {
		name   string
		token  string
		body   interface{}
		status int
	}{
		{"tenant admin", tokenFor(t, adminOf(h.ID)), map[string]bool{"isActive": false}, http.StatusForbidden},
		{"missing flag", tokenFor(t, superAdmin()), map[string]string{}, http.StatusBadRequest},
		{"string flag", tokenFor(t, superAdmin()), map[string]string{"isActive": "no"}, http.StatusBadRequest},
		{"super admin", tokenFor(t, superAdmin()), map[string]bool{"isActive": false}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPatch, "/api/hostels/"+h.ID+"/status", tt.token, tt.body)
			assertStatus(t, w, tt.status)
			if tt.status == http.StatusBadRequest {
				assert.Equal(t, "isActive must be a boolean", decode(t, w).Error.Message)
			}
		})
	}
}

func TestHostelStatus_NonBooleanLeavesHostelActive(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")

	for _, body := range []interface{}{
		map[string]string{"isActive": "yes"},
		map[string]int{"isActive": 0},
		"{not json",
	} {
		w := api.do(t, http.MethodPatch, "/api/hostels/"+h.ID+"/status", tokenFor(t, superAdmin()), body)
		assertStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, "isActive must be a boolean", decode(t, w).Error.Message)
	}

	got, err := api.store.Hostels.GetByID(t.Context(), h.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestHostelDelete_ExistenceBeforeRole(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")
	admin := tokenFor(t, adminOf(h.ID))

	w := api.do(t, http.MethodDelete, "/api/hostels/00000000-0000-0000-0000-000000000000", admin, nil)
	assertStatus(t, w, http.StatusNotFound)

	w = api.do(t, http.MethodDelete, "/api/hostels/"+h.ID, admin, nil)
	assertStatus(t, w, http.StatusForbidden)

	w = api.do(t, http.MethodDelete, "/api/hostels/"+h.ID, tokenFor(t, superAdmin()), nil)
	assertStatus(t, w, http.StatusOK)

	w = api.do(t, http.MethodGet, "/api/hostels/"+h.ID, tokenFor(t, superAdmin()), nil)
	assertStatus(t, w, http.StatusNotFound)
}

func TestMyHostel(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")
	api.room(t, h.ID, "101", domain.RoomTypeDorm)
	api.room(t, h.ID, "102", domain.RoomTypePrivate)
	api.guest(t, h.ID)

	w := api.do(t, http.MethodGet, "/api/hostels/my-hostel", tokenFor(t, staffOf(h.ID)), nil)
	assertStatus(t, w, http.StatusOK)

	var body dto.MyHostelResponse
	decodeData(t, w, &body)
	assert.Equal(t, h.ID, body.Hostel.ID)
	assert.Equal(t, 2, body.Stats.TotalRooms)
	assert.Equal(t, 2, body.Stats.AvailableRooms)
	assert.Equal(t, 1, body.Stats.TotalGuests)
}

func TestHostelStats_TenantIsolation(t *testing.T) {
	api := newAPI(t)
	a := api.hostel(t, "alpha")
	b := api.hostel(t, "bravo")
	api.room(t, b.ID, "1", domain.RoomTypeDorm)

	w := api.do(t, http.MethodGet, "/api/hostels/"+b.ID+"/stats", tokenFor(t, adminOf(a.ID)), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = api.do(t, http.MethodGet, "/api/hostels/"+b.ID+"/stats", tokenFor(t, superAdmin()), nil)
	assertStatus(t, w, http.StatusOK)

	var body dto.HostelStatsResponse
	decodeData(t, w, &body)
	require.Len(t, body.Stats.RoomTypes, 1)
	assert.Equal(t, domain.RoomTypeDorm, body.Stats.RoomTypes[0].Type)
	assert.Len(t, body.Stats.MonthlyBookingsTrend, 6)
}

func TestHostelStatsExport(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")
	api.room(t, h.ID, "1", domain.RoomTypeDorm)

	w := api.do(t, http.MethodGet, "/api/hostels/"+h.ID+"/stats/export", tokenFor(t, adminOf(h.ID)), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), "alpha-stats-"))
	assert.NotEmpty(t, w.Body.Bytes())
}
