package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
)

// PaymentService defines the interface for the payment ledger
type PaymentService interface {
	List(ctx context.Context, identity domain.Identity, query *dto.ListPaymentsQuery) (*dto.ListPaymentsResponse, error)
	Get(ctx context.Context, identity domain.Identity, id string) (*domain.Payment, error)
	Create(ctx context.Context, identity domain.Identity, req *dto.CreatePaymentRequest) (*domain.Payment, error)
	Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdatePaymentRequest) (*domain.Payment, error)
	// UpdateStatus moves a payment along its lifecycle
	UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.PaymentStatus) (*domain.Payment, error)
	Delete(ctx context.Context, identity domain.Identity, id string) error
}

type paymentService struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
	guard    *AccessGuard
	notifier *ChangeNotifier
	clock    Clock
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	guard *AccessGuard,
	notifier *ChangeNotifier,
	clock Clock,
) PaymentService {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NewChangeNotifier(nil, nil, clock, nil)
	}
	return &paymentService{
		payments: payments,
		bookings: bookings,
		guard:    guard,
		notifier: notifier,
		clock:    clock,
	}
}

func (s *paymentService) List(ctx context.Context, identity domain.Identity, query *dto.ListPaymentsQuery) (*dto.ListPaymentsResponse, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, query.HostelID)
	if err != nil {
		return nil, err
	}

	query.SetDefaults()
	payments, total, err := s.payments.List(ctx, repository.PaymentFilter{
		Page:      repository.Page{Page: query.Page, Limit: query.Limit},
		HostelID:  hostel.ID,
		Status:    query.Status,
		BookingID: query.BookingID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.ListPaymentsResponse{
		Payments:   payments,
		Pagination: response.NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *paymentService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.Payment, error) {
	return s.load(ctx, identity, id)
}

func (s *paymentService) Create(ctx context.Context, identity domain.Identity, req *dto.CreatePaymentRequest) (*domain.Payment, error) {
	hostel, err := s.guard.ResolveHostel(ctx, identity, req.HostelID)
	if err != nil {
		return nil, err
	}

	if req.BookingID != "" {
		booking, err := s.bookings.GetByID(ctx, req.BookingID)
		if err != nil {
			return nil, err
		}
		if booking == nil || booking.HostelID != hostel.ID {
			return nil, invalid("bookingId", "Booking not found in this hostel")
		}
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = hostel.Settings.WithDefaults().Currency
	}
	status := req.Status
	if status == "" {
		status = domain.PaymentStatusPending
	}

	now := s.clock.Now().UTC()
	payment := &domain.Payment{
		ID:        uuid.New().String(),
		HostelID:  hostel.ID,
		BookingID: req.BookingID,
		Amount:    round2(req.Amount),
		Currency:  currency,
		Method:    req.Method,
		Status:    status,
		Reference: req.Reference,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.changed(ctx, identity, dto.ChangeCreated, payment, "", "")
	return payment, nil
}

func (s *paymentService) Update(ctx context.Context, identity domain.Identity, id string, req *dto.UpdatePaymentRequest) (*domain.Payment, error) {
	payment, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if ok, msg := req.Validate(); !ok {
		return nil, invalid("", msg)
	}

	if req.Amount != nil {
		// Settled amounts feed revenue; corrections go through a refund instead
		if payment.Status != domain.PaymentStatusPending {
			return nil, invalid("amount", "Amount can only change while the payment is PENDING")
		}
		payment.Amount = round2(*req.Amount)
	}
	if req.Method != nil {
		payment.Method = *req.Method
	}
	if req.Reference != nil {
		payment.Reference = *req.Reference
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	payment.UpdatedAt = s.clock.Now().UTC()

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, s.writeError(err)
	}

	s.changed(ctx, identity, dto.ChangeUpdated, payment, "", "")
	return payment, nil
}

func (s *paymentService) UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.PaymentStatus) (*domain.Payment, error) {
	payment, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("status", "Unknown payment status")
	}

	from := payment.Status
	if err := payment.TransitionTo(status, s.clock.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: payment cannot move from %s to %s", err, from, status)
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, s.writeError(err)
	}

	s.changed(ctx, identity, dto.ChangeStatusChanged, payment, string(from), string(status))
	return payment, nil
}

func (s *paymentService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	payment, err := s.load(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := s.payments.Delete(ctx, payment.ID); err != nil {
		return s.writeError(err)
	}

	s.notifier.changed(ctx, dto.TopicPaymentChanged, &dto.EntityChangedEvent{
		Change:   dto.ChangeDeleted,
		HostelID: payment.HostelID,
		EntityID: payment.ID,
		ActorID:  identity.UserID,
	})
	return nil
}

func (s *paymentService) load(ctx context.Context, identity domain.Identity, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if err := s.guard.Authorize(ctx, identity, payment.HostelID); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) changed(ctx context.Context, identity domain.Identity, change dto.ChangeType, payment *domain.Payment, from, to string) {
	s.notifier.changed(ctx, dto.TopicPaymentChanged, &dto.EntityChangedEvent{
		Change:     change,
		HostelID:   payment.HostelID,
		EntityID:   payment.ID,
		ActorID:    identity.UserID,
		FromStatus: from,
		ToStatus:   to,
		Entity:     payment,
	})
}

func (s *paymentService) writeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaymentNotFound
	}
	return err
}
