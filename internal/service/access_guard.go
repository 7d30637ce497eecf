package service

import (
	"context"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/telemetry"
)

const listAllHint = "Only super admins can list all hostels. Use /api/hostels/my-hostel to view your hostel."

// Authorize permits super admins everywhere and everyone else only on their own hostel
func Authorize(identity domain.Identity, targetHostelID string) error {
	if identity.CanAccess(targetHostelID) {
		return nil
	}
	return denied("You do not have access to this hostel")
}

// AuthorizeListAll permits only super admins
func AuthorizeListAll(identity domain.Identity) error {
	if identity.IsSuperAdmin() {
		return nil
	}
	return denied(listAllHint)
}

// AuthorizeSlugChange permits only super admins, regardless of tenant match.
// The same rule covers plan and isActive changes.
func AuthorizeSlugChange(identity domain.Identity) error {
	if identity.IsSuperAdmin() {
		return nil
	}
	return denied("Only super admins can change a hostel's slug, plan or active status")
}

// AuthorizeSuperAdmin permits only super admins for platform-level actions
func AuthorizeSuperAdmin(identity domain.Identity, action string) error {
	if identity.IsSuperAdmin() {
		return nil
	}
	return denied("Only super admins can " + action)
}

// AccessGuard applies the tenant rules against stored hostels and counts denials
type AccessGuard struct {
	hostels repository.HostelRepository
	denials *telemetry.Counter
}

// NewAccessGuard creates an AccessGuard
func NewAccessGuard(hostels repository.HostelRepository) *AccessGuard {
	return &AccessGuard{
		hostels: hostels,
		denials: telemetry.MustCounter(telemetry.MetricOpts{
			Name:        "authz_denials_total",
			Description: "Requests rejected by tenant authorization",
			Unit:        "1",
		}),
	}
}

func (g *AccessGuard) record(ctx context.Context, identity domain.Identity, op string, err error) error {
	if err != nil {
		g.denials.Inc(ctx, telemetry.UserRoleAttr(string(identity.Role)), telemetry.OperationAttr(op))
	}
	return err
}

// Authorize checks tenant access without touching storage
func (g *AccessGuard) Authorize(ctx context.Context, identity domain.Identity, targetHostelID string) error {
	return g.record(ctx, identity, "authorize", Authorize(identity, targetHostelID))
}

// AuthorizeListAll checks the list-all-hostels permission
func (g *AccessGuard) AuthorizeListAll(ctx context.Context, identity domain.Identity) error {
	return g.record(ctx, identity, "list_all", AuthorizeListAll(identity))
}

// AuthorizeSlugChange checks the restricted-field permission
func (g *AccessGuard) AuthorizeSlugChange(ctx context.Context, identity domain.Identity) error {
	return g.record(ctx, identity, "slug_change", AuthorizeSlugChange(identity))
}

// AuthorizeSuperAdmin checks a platform-level permission
func (g *AccessGuard) AuthorizeSuperAdmin(ctx context.Context, identity domain.Identity, action string) error {
	return g.record(ctx, identity, "super_admin", AuthorizeSuperAdmin(identity, action))
}

// RequireHostel loads the hostel (404 when missing) and then checks access (403)
func (g *AccessGuard) RequireHostel(ctx context.Context, identity domain.Identity, hostelID string) (*domain.Hostel, error) {
	hostel, err := g.hostels.GetByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if hostel == nil {
		return nil, ErrHostelNotFound
	}
	if err := g.Authorize(ctx, identity, hostel.ID); err != nil {
		return nil, err
	}
	return hostel, nil
}

// ResolveHostelID picks the hostel a create or list acts on. Non-super-admins
// always act on their own hostel; naming another one is forbidden.
func (g *AccessGuard) ResolveHostelID(ctx context.Context, identity domain.Identity, requested string) (string, error) {
	if identity.IsSuperAdmin() {
		if requested != "" {
			return requested, nil
		}
		if identity.HostelID != "" {
			return identity.HostelID, nil
		}
		return "", invalid("hostelId", "hostelId is required")
	}

	if identity.HostelID == "" {
		return "", g.record(ctx, identity, "resolve", denied("No hostel associated with this account"))
	}
	if requested != "" && requested != identity.HostelID {
		return "", g.record(ctx, identity, "resolve", denied("You do not have access to this hostel"))
	}
	return identity.HostelID, nil
}

// ResolveHostel resolves the hostel id and then loads and authorizes it
func (g *AccessGuard) ResolveHostel(ctx context.Context, identity domain.Identity, requested string) (*domain.Hostel, error) {
	hostelID, err := g.ResolveHostelID(ctx, identity, requested)
	if err != nil {
		return nil, err
	}
	return g.RequireHostel(ctx, identity, hostelID)
}
