// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
	"github.com/mealgrid/mealgrid/pkg/uuid"
)

// # Service Layer

// Service orchestrates the vendor application and approval lifecycle.
type Service struct {
	profileRepository ProfileRepository
	roles             RoleUpdater
	sessions          SessionInvalidator
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(profileRepo ProfileRepository, roles RoleUpdater, sessions SessionInvalidator, logger *slog.Logger) *Service {
	return &Service{
		profileRepository: profileRepo,
		roles:             roles,
		sessions:          sessions,
		logger:            logger,
	}
}

// # Application Flow

// ApplyInput holds the data a customer submits to become a vendor.
type ApplyInput struct {
	UserID       string
	BusinessName string
	Description  string
}

/*
Apply files a new vendor application.

Description: Creates a pending profile and promotes the account to the vendor
role. A vendor with a pending profile can sign in and see the status screen
but cannot touch any vendor resource until approved.

Parameters:
  - context: context.Context
  - input: ApplyInput

Returns:
  - *VendorProfile: Created pending application
  - err: Conflict (one application per account) or storage errors
*/
func (service *Service) Apply(context context.Context, input ApplyInput) (*VendorProfile, error) {

	// One application per account, in any status.
	_, err := service.profileRepository.FindByUserID(context, input.UserID)
	if err == nil {
		return nil, apperr.Conflict("A vendor application already exists for this account")
	}

	profile := &VendorProfile{
		ID:           uuid.New(),
		UserID:       input.UserID,
		BusinessName: input.BusinessName,
		Description:  input.Description,
		Status:       sec.VendorStatusPending,
	}

	if err := service.profileRepository.Create(context, profile); err != nil {
		return nil, fmt.Errorf("profile_service_apply_failed: %w", err)
	}

	// The account becomes a vendor immediately; gates key off the profile status.
	if err := service.roles.UpdateRole(context, input.UserID, sec.RoleVendor); err != nil {
		return nil, fmt.Errorf("profile_service_role_update_failed: %w", err)
	}

	service.logger.Info("vendor application filed",
		"profile_id", profile.ID, "user_id", input.UserID, "business", input.BusinessName)

	return profile, nil
}

/*
StatusFor returns the profile for the vendor status screen.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *VendorProfile: The caller's application
  - err: apperr.NotFound if no application exists
*/
func (service *Service) StatusFor(context context.Context, userID string) (*VendorProfile, error) {
	return service.profileRepository.FindByUserID(context, userID)
}

// # Admin Review Flow

/*
List returns vendor profiles for the admin review queue.

Parameters:
  - context: context.Context
  - status: sec.VendorStatus (empty = all)
  - limit: int
  - offset: int

Returns:
  - []*VendorProfile: Matched profiles, newest first
  - int: Total match count
  - err: Retrieval failures
*/
func (service *Service) List(context context.Context, status sec.VendorStatus, limit, offset int) ([]*VendorProfile, int, error) {
	return service.profileRepository.List(context, status, limit, offset)
}

/*
Transition moves a vendor profile to a new status.

Description: The single entry point for every admin decision. The state
machine is enforced here: an illegal move (approving a suspended vendor
directly from rejected, re-reviewing a rejection) is a conflict, not a silent
overwrite. Suspension additionally kills the vendor's sessions.

Parameters:
  - context: context.Context
  - profileID: string
  - target: sec.VendorStatus
  - reason: string (required for rejection and suspension)
  - reviewedBy: string (admin user id)

Returns:
  - *VendorProfile: Updated profile
  - err: NotFound, Conflict (illegal transition), or storage errors
*/
func (service *Service) Transition(context context.Context, profileID string, target sec.VendorStatus, reason, reviewedBy string) (*VendorProfile, error) {

	profile, err := service.profileRepository.FindByID(context, profileID)
	if err != nil {
		return nil, err
	}

	if !profile.Status.CanTransitionTo(target) {
		return nil, apperr.Conflict(fmt.Sprintf(
			"Cannot move vendor from %q to %q", profile.Status, target))
	}

	now := time.Now()
	profile.Status = target
	profile.ReviewedBy = reviewedBy
	profile.ReviewedAt = &now

	// Approval wipes any stale rejection/suspension note.
	if target == sec.VendorStatusApproved {
		profile.StatusReason = ""
	} else {
		profile.StatusReason = reason
	}

	if err := service.profileRepository.UpdateStatus(context, profile); err != nil {
		return nil, fmt.Errorf("profile_service_transition_failed: %w", err)
	}

	// A suspended vendor must not ride out existing sessions.
	if target == sec.VendorStatusSuspended {
		if err := service.sessions.InvalidateAll(context, profile.UserID); err != nil {
			service.logger.Error("failed to invalidate sessions after suspension",
				"profile_id", profile.ID, "error", err)
		}
	}

	service.logger.Info("vendor status transition",
		"profile_id", profile.ID, "status", target, "reviewed_by", reviewedBy)

	return profile, nil
}
