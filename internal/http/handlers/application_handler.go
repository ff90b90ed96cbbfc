package handlers

import (
	"context"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/http/dto"
	"github.com/amplyst/backend/internal/middleware"
	"github.com/amplyst/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplicationOps is implemented by services.ApplicationService.
type ApplicationOps interface {
	Submit(ctx context.Context, caller auth.Identity, campaignID uuid.UUID, message, proposedContent string) (*models.Application, error)
	Decide(ctx context.Context, caller auth.Identity, id uuid.UUID, status string) (*models.Application, error)
	ListForBrand(ctx context.Context, caller auth.Identity) ([]models.Application, error)
	ListForInfluencer(ctx context.Context, caller auth.Identity) ([]models.Application, error)
	ListForCampaign(ctx context.Context, caller auth.Identity, campaignID uuid.UUID) ([]models.Application, error)
	StatsByBrand(ctx context.Context, caller auth.Identity) (map[uuid.UUID]models.ApplicationStats, error)
}

type ApplicationHandler struct {
	applications ApplicationOps
	log          *zap.Logger
}

func NewApplicationHandler(applications ApplicationOps, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, log: log}
}

func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	var req dto.CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return badRequest(c, "invalid campaign_id")
	}

	app, err := h.applications.Submit(c.UserContext(), middleware.GetIdentity(c), campaignID, req.Message, req.ProposedContent)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: app})
}

func (h *ApplicationHandler) UpdateApplication(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid application id")
	}

	var req dto.DecideApplicationRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return badRequest(c, "status is required (approved, rejected)")
	}

	app, err := h.applications.Decide(c.UserContext(), middleware.GetIdentity(c), id, req.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: app})
}

// ListApplications is the brand view across all of the caller's campaigns.
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	apps, err := h.applications.ListForBrand(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: apps})
}

func (h *ApplicationHandler) ListMyApplications(c *fiber.Ctx) error {
	apps, err := h.applications.ListForInfluencer(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: apps})
}

func (h *ApplicationHandler) ListCampaignApplications(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid campaign id")
	}

	apps, err := h.applications.ListForCampaign(c.UserContext(), middleware.GetIdentity(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: apps})
}

// GetStats returns application counts keyed by campaign id.
func (h *ApplicationHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.applications.StatsByBrand(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}
