package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

// MemoryStore is an in-memory implementation of every repository, used with
// STORAGE_DRIVER=memory and in tests. Records are copied in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	hostels  map[string]*domain.Hostel
	users    map[string]*domain.User
	rooms    map[string]*domain.Room
	guests   map[string]*domain.Guest
	bookings map[string]*domain.Booking
	payments map[string]*domain.Payment
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hostels:  make(map[string]*domain.Hostel),
		users:    make(map[string]*domain.User),
		rooms:    make(map[string]*domain.Room),
		guests:   make(map[string]*domain.Guest),
		bookings: make(map[string]*domain.Booking),
		payments: make(map[string]*domain.Payment),
	}
}

// Store returns the repositories backed by this memory store
func (s *MemoryStore) Store() *Store {
	return &Store{
		Hostels:  memoryHostels{s},
		Users:    memoryUsers{s},
		Rooms:    memoryRooms{s},
		Guests:   memoryGuests{s},
		Bookings: memoryBookings{s},
		Payments: memoryPayments{s},
		Stats:    memoryStats{s},
	}
}

func paginate[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	return items[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// --- hostels ---

type memoryHostels struct{ s *MemoryStore }

func copyHostel(h *domain.Hostel) *domain.Hostel {
	c := *h
	if h.Settings.LateCheckoutFee != nil {
		fee := *h.Settings.LateCheckoutFee
		c.Settings.LateCheckoutFee = &fee
	}
	if h.DeletedAt != nil {
		at := *h.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func (s *MemoryStore) slugTakenLocked(slug, excludeID string) bool {
	for _, h := range s.hostels {
		if h.Slug == slug && h.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) emailTakenLocked(email string) bool {
	for _, u := range s.users {
		if u.Email == email {
			return true
		}
	}
	return false
}

func (r memoryHostels) Create(_ context.Context, hostel *domain.Hostel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.slugTakenLocked(hostel.Slug, "") {
		return ErrDuplicateSlug
	}
	r.s.hostels[hostel.ID] = copyHostel(hostel)
	return nil
}

func (r memoryHostels) CreateWithOwner(_ context.Context, hostel *domain.Hostel, owner *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.slugTakenLocked(hostel.Slug, "") {
		return ErrDuplicateSlug
	}
	if r.s.emailTakenLocked(owner.Email) {
		return ErrDuplicateEmail
	}
	r.s.hostels[hostel.ID] = copyHostel(hostel)
	u := *owner
	r.s.users[owner.ID] = &u
	return nil
}

func (r memoryHostels) GetByID(_ context.Context, id string) (*domain.Hostel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.hostels[id]
	if !ok || h.DeletedAt != nil {
		return nil, nil
	}
	return copyHostel(h), nil
}

func (r memoryHostels) GetBySlug(_ context.Context, slug string) (*domain.Hostel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, h := range r.s.hostels {
		if h.DeletedAt == nil && h.Slug == slug {
			return copyHostel(h), nil
		}
	}
	return nil, nil
}

func (r memoryHostels) List(_ context.Context, filter HostelFilter) ([]*domain.Hostel, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Hostel, 0)
	for _, h := range r.s.hostels {
		if h.DeletedAt != nil {
			continue
		}
		if filter.Search != "" && !containsFold(h.Name, filter.Search) && !containsFold(h.Slug, filter.Search) {
			continue
		}
		matched = append(matched, copyHostel(h))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r memoryHostels) Update(_ context.Context, hostel *domain.Hostel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.hostels[hostel.ID]
	if !ok || existing.DeletedAt != nil {
		return ErrNotFound
	}
	if r.s.slugTakenLocked(hostel.Slug, hostel.ID) {
		return ErrDuplicateSlug
	}
	r.s.hostels[hostel.ID] = copyHostel(hostel)
	return nil
}

func (r memoryHostels) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.hostels[id]
	if !ok || h.DeletedAt != nil {
		return ErrNotFound
	}
	h.DeletedAt = &at
	h.UpdatedAt = at
	return nil
}

func (r memoryHostels) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.slugTakenLocked(slug, excludeID), nil
}

func (r memoryHostels) Counts(_ context.Context, id string) (*domain.HostelCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := &domain.HostelCounts{}
	for _, u := range r.s.users {
		if u.HostelID == id {
			c.Users++
		}
	}
	for _, x := range r.s.rooms {
		if x.HostelID == id {
			c.Rooms++
		}
	}
	for _, x := range r.s.bookings {
		if x.HostelID == id {
			c.Bookings++
		}
	}
	for _, x := range r.s.guests {
		if x.HostelID == id {
			c.Guests++
		}
	}
	return c, nil
}

func (r memoryHostels) CountAll(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, h := range r.s.hostels {
		if h.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

// --- users ---

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTakenLocked(user.Email) {
		return ErrDuplicateEmail
	}
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.emailTakenLocked(email), nil
}

// --- rooms ---

type memoryRooms struct{ s *MemoryStore }

func copyRoom(room *domain.Room) *domain.Room {
	c := *room
	c.Amenities = append([]string{}, room.Amenities...)
	c.Images = append([]string{}, room.Images...)
	return &c
}

func (s *MemoryStore) roomNumberTakenLocked(room *domain.Room) bool {
	for _, x := range s.rooms {
		if x.HostelID == room.HostelID && x.RoomNumber == room.RoomNumber && x.ID != room.ID {
			return true
		}
	}
	return false
}

func (r memoryRooms) Create(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.roomNumberTakenLocked(room) {
		return ErrDuplicateRoomNumber
	}
	r.s.rooms[room.ID] = copyRoom(room)
	return nil
}

func (r memoryRooms) GetByID(_ context.Context, id string) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, nil
	}
	return copyRoom(room), nil
}

func (r memoryRooms) List(_ context.Context, filter RoomFilter) ([]*domain.Room, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Room, 0)
	for _, room := range r.s.rooms {
		if room.HostelID != filter.HostelID {
			continue
		}
		if filter.Search != "" && !containsFold(room.RoomNumber, filter.Search) &&
			!containsFold(room.Name, filter.Search) && !containsFold(room.Description, filter.Search) {
			continue
		}
		if filter.Type != "" && room.Type != filter.Type {
			continue
		}
		if filter.Floor != nil && (room.Floor == nil || *room.Floor != *filter.Floor) {
			continue
		}
		if filter.IsAvailable != nil && room.IsAvailable != *filter.IsAvailable {
			continue
		}
		matched = append(matched, copyRoom(room))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].RoomNumber < matched[j].RoomNumber })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r memoryRooms) Update(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[room.ID]; !ok {
		return ErrNotFound
	}
	if r.s.roomNumberTakenLocked(room) {
		return ErrDuplicateRoomNumber
	}
	r.s.rooms[room.ID] = copyRoom(room)
	return nil
}

func (r memoryRooms) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.rooms, id)
	return nil
}

func (r memoryRooms) HasBookings(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.bookings {
		if b.RoomID == id {
			return true, nil
		}
	}
	return false, nil
}

// --- guests ---

type memoryGuests struct{ s *MemoryStore }

func (r memoryGuests) Create(_ context.Context, guest *domain.Guest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g := *guest
	r.s.guests[guest.ID] = &g
	return nil
}

func (r memoryGuests) GetByID(_ context.Context, id string) (*domain.Guest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.guests[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (r memoryGuests) List(_ context.Context, filter GuestFilter) ([]*domain.Guest, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Guest, 0)
	for _, g := range r.s.guests {
		if g.HostelID != filter.HostelID {
			continue
		}
		if filter.Search != "" && !containsFold(g.FirstName, filter.Search) && !containsFold(g.LastName, filter.Search) &&
			!containsFold(g.Email, filter.Search) && !containsFold(g.Phone, filter.Search) {
			continue
		}
		c := *g
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r memoryGuests) Update(_ context.Context, guest *domain.Guest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.guests[guest.ID]; !ok {
		return ErrNotFound
	}
	g := *guest
	r.s.guests[guest.ID] = &g
	return nil
}

func (r memoryGuests) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.guests[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.guests, id)
	return nil
}

func (r memoryGuests) HasBookings(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.bookings {
		if b.GuestID == id {
			return true, nil
		}
	}
	return false, nil
}

// --- bookings ---

type memoryBookings struct{ s *MemoryStore }

func (r memoryBookings) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b := *booking
	r.s.bookings[booking.ID] = &b
	return nil
}

func (r memoryBookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r memoryBookings) List(_ context.Context, filter BookingFilter) ([]*domain.Booking, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Booking, 0)
	for _, b := range r.s.bookings {
		if b.HostelID != filter.HostelID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.RoomID != "" && b.RoomID != filter.RoomID {
			continue
		}
		if filter.GuestID != "" && b.GuestID != filter.GuestID {
			continue
		}
		if filter.From != nil && b.CheckIn.Before(*filter.From) {
			continue
		}
		if filter.To != nil && b.CheckIn.After(*filter.To) {
			continue
		}
		c := *b
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CheckIn.Equal(matched[j].CheckIn) {
			return matched[i].CheckIn.After(matched[j].CheckIn)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r memoryBookings) Update(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings[booking.ID]; !ok {
		return ErrNotFound
	}
	b := *booking
	r.s.bookings[booking.ID] = &b
	return nil
}

func (r memoryBookings) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.bookings, id)
	for _, p := range r.s.payments {
		if p.BookingID == id {
			p.BookingID = ""
		}
	}
	return nil
}

// --- payments ---

type memoryPayments struct{ s *MemoryStore }

func (r memoryPayments) Create(_ context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := *payment
	r.s.payments[payment.ID] = &p
	return nil
}

func (r memoryPayments) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r memoryPayments) List(_ context.Context, filter PaymentFilter) ([]*domain.Payment, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Payment, 0)
	for _, p := range r.s.payments {
		if p.HostelID != filter.HostelID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.BookingID != "" && p.BookingID != filter.BookingID {
			continue
		}
		c := *p
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r memoryPayments) Update(_ context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.payments[payment.ID]; !ok {
		return ErrNotFound
	}
	p := *payment
	r.s.payments[payment.ID] = &p
	return nil
}

func (r memoryPayments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.payments[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.payments, id)
	return nil
}

// --- stats ---

type memoryStats struct{ s *MemoryStore }

func (r memoryStats) SumCompletedPayments(_ context.Context, hostelID string, from, to time.Time) (float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum float64
	for _, p := range r.s.payments {
		if p.HostelID == hostelID && p.Status == domain.PaymentStatusCompleted && inRange(p.CreatedAt, from, to) {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (r memoryStats) CountBookingsCreated(_ context.Context, hostelID string, from, to time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, b := range r.s.bookings {
		if b.HostelID == hostelID && inRange(b.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

func (r memoryStats) CountRooms(_ context.Context, hostelID string, availableOnly bool) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, room := range r.s.rooms {
		if room.HostelID == hostelID && (!availableOnly || room.IsAvailable) {
			n++
		}
	}
	return n, nil
}

func (r memoryStats) StaysWithin(_ context.Context, hostelID string, from, to time.Time) ([]Stay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stays := make([]Stay, 0)
	for _, b := range r.s.bookings {
		if b.HostelID == hostelID && !b.CheckIn.Before(from) && !b.CheckOut.After(to) {
			stays = append(stays, Stay{CheckIn: b.CheckIn, CheckOut: b.CheckOut})
		}
	}
	return stays, nil
}

func (r memoryStats) CountActiveBookings(_ context.Context, hostelID string, asOf time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, b := range r.s.bookings {
		if b.HostelID != hostelID {
			continue
		}
		if b.Status == domain.BookingStatusCheckedIn ||
			(b.Status == domain.BookingStatusConfirmed && !b.CheckIn.Before(asOf)) {
			n++
		}
	}
	return n, nil
}

func (r memoryStats) RoomTypeCounts(_ context.Context, hostelID string) ([]domain.RoomTypeCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byType := make(map[domain.RoomType]int)
	for _, room := range r.s.rooms {
		if room.HostelID == hostelID {
			byType[room.Type]++
		}
	}
	out := make([]domain.RoomTypeCount, 0, len(byType))
	for t, n := range byType {
		out = append(out, domain.RoomTypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (r memoryStats) MonthlyBookingCounts(_ context.Context, hostelID string, from, to time.Time) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]int)
	for _, b := range r.s.bookings {
		if b.HostelID == hostelID && inRange(b.CreatedAt, from, to) {
			out[domain.MonthKey(b.CreatedAt)]++
		}
	}
	return out, nil
}

func (r memoryStats) CountGuests(_ context.Context, hostelID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, g := range r.s.guests {
		if g.HostelID == hostelID {
			n++
		}
	}
	return n, nil
}

func (r memoryStats) CountBookings(_ context.Context, hostelID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, b := range r.s.bookings {
		if b.HostelID == hostelID {
			n++
		}
	}
	return n, nil
}

func (r memoryStats) CountStaff(_ context.Context, hostelID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, u := range r.s.users {
		if u.HostelID == hostelID {
			n++
		}
	}
	return n, nil
}
