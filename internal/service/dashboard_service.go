package service

import (
	"context"

	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DashboardStats is the aggregate card data for the principal dashboard.
type DashboardStats struct {
	PendingRegistrations int `json:"pending_registrations"`
	ActiveCampaigns      int `json:"active_campaigns"`
	UnreadMessages       int `json:"unread_messages"`
	HomeworkDueSoon      int `json:"homework_due_soon"`
}

// DashboardService aggregates counters for the landing screen.
type DashboardService struct {
	regRepo       *repository.RegistrationRepository
	campaignRepo  *repository.CampaignRepository
	threadRepo    *repository.ThreadRepository
	dashboardRepo *repository.DashboardRepository
	log           zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	regRepo *repository.RegistrationRepository,
	campaignRepo *repository.CampaignRepository,
	threadRepo *repository.ThreadRepository,
	dashboardRepo *repository.DashboardRepository,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		regRepo:       regRepo,
		campaignRepo:  campaignRepo,
		threadRepo:    threadRepo,
		dashboardRepo: dashboardRepo,
		log:           log.With().Str("component", "dashboard_service").Logger(),
	}
}

// Stats collects the dashboard counters for a staff member. Each counter is
// independent: a failing one zeroes out rather than failing the whole card
// row.
func (s *DashboardService) Stats(ctx context.Context, profileID, preschoolID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	pending, err := s.regRepo.CountPending(ctx, preschoolID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to count pending registrations")
	} else {
		stats.PendingRegistrations = pending
	}

	active, err := s.campaignRepo.CountActive(ctx, preschoolID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to count active campaigns")
	} else {
		stats.ActiveCampaigns = active
	}

	unread, err := s.threadRepo.TotalUnread(ctx, profileID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to count unread messages")
	} else {
		stats.UnreadMessages = unread
	}

	due, err := s.dashboardRepo.CountHomeworkDue(ctx, preschoolID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to count homework due")
	} else {
		stats.HomeworkDueSoon = due
	}

	return stats, nil
}
