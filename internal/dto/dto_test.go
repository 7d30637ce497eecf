package dto

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"sunset-hostel", true},
		{"h1", true},
		{"a", false},
		{"Upper", false},
		{"under_score", false},
		{"with space", false},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false}, // 51 chars
	}
	for _, tt := range tests {
		ok, msg := ValidateSlug(tt.slug)
		assert.Equal(t, tt.ok, ok, "slug %q", tt.slug)
		if !ok {
			assert.NotEmpty(t, msg)
		}
	}
}

func TestUpdateHostelRequest(t *testing.T) {
	empty := UpdateHostelRequest{}
	ok, _ := empty.Validate()
	assert.False(t, ok)
	assert.False(t, empty.TouchesRestrictedFields())

	name := "New Name"
	req := UpdateHostelRequest{Name: &name}
	ok, _ = req.Validate()
	assert.True(t, ok)
	assert.False(t, req.TouchesRestrictedFields())

	slug := "new-slug"
	req.Slug = &slug
	assert.True(t, req.TouchesRestrictedFields())

	bad := domain.Plan("GOLD")
	req.Plan = &bad
	ok, msg := req.Validate()
	assert.False(t, ok)
	assert.Contains(t, msg, "Plan")
}

func TestHostelSettingsInput_Apply(t *testing.T) {
	var in *HostelSettingsInput
	s := in.Apply(domain.HostelSettings{})
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, "UTC", s.Timezone)

	eur := "EUR"
	fee := 15.0
	s = (&HostelSettingsInput{Currency: &eur, LateCheckoutFee: &fee}).Apply(domain.HostelSettings{Phone: "123"})
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, "123", s.Phone)
	require.NotNil(t, s.LateCheckoutFee)
	assert.Equal(t, 15.0, *s.LateCheckoutFee)
}

func TestCreateBookingRequest_Dates(t *testing.T) {
	req := CreateBookingRequest{CheckIn: "2025-03-01", CheckOut: "2025-03-03"}
	in, out, err := req.Dates()
	require.NoError(t, err)
	assert.Equal(t, 2, domain.NightsBetween(in, out))

	req = CreateBookingRequest{CheckIn: "2025-03-03T12:00:00Z", CheckOut: "2025-03-01"}
	_, _, err = req.Dates()
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)

	req = CreateBookingRequest{CheckIn: "yesterday", CheckOut: "2025-03-01"}
	_, _, err = req.Dates()
	assert.Error(t, err)
}

func TestUpdateBookingRequest_ApplyDates(t *testing.T) {
	in := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 2)

	newOut := "2025-03-05"
	req := UpdateBookingRequest{CheckOut: &newOut}
	gotIn, gotOut, err := req.ApplyDates(in, out)
	require.NoError(t, err)
	assert.Equal(t, in, gotIn)
	assert.Equal(t, 4, domain.NightsBetween(gotIn, gotOut))

	early := "2025-02-27"
	req = UpdateBookingRequest{CheckOut: &early}
	_, _, err = req.ApplyDates(in, out)
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)
}

func TestValidationDetails(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	err := v.Struct(&RegisterRequest{Name: "A", Email: "nope", Password: "123"})
	details := ValidationDetails(err)
	assert.Equal(t, "must be at least 2 characters", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 6 characters", details["password"])
	assert.Equal(t, "is required", details["hostelName"])

	assert.Nil(t, ValidationDetails(assert.AnError))
}

func TestNewHostelStats_Projection(t *testing.T) {
	snap := &domain.StatsSnapshot{MonthlyRevenue: 100, YearlyRevenue: 900, TotalRooms: 2, AvailableRooms: 1, OccupancyRate: 3.33}
	my := NewMyHostelStats(snap)
	assert.Equal(t, 100.0, my.MonthlyRevenue)
	assert.Equal(t, 1, my.AvailableRooms)

	full := NewHostelStats(snap)
	assert.Equal(t, 900.0, full.YearlyRevenue)
	assert.Equal(t, 3.33, full.OccupancyRate)
}
