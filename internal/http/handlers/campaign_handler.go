package handlers

import (
	"context"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/http/dto"
	"github.com/amplyst/backend/internal/middleware"
	"github.com/amplyst/backend/internal/models"
	"github.com/amplyst/backend/internal/repositories"
	"github.com/amplyst/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CampaignOps is implemented by services.CampaignService.
type CampaignOps interface {
	Create(ctx context.Context, caller auth.Identity, in services.CampaignInput) (*models.Campaign, error)
	Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Campaign, error)
	ListMine(ctx context.Context, caller auth.Identity, includeExpired bool) ([]models.Campaign, error)
	Browse(ctx context.Context, caller auth.Identity, f repositories.CampaignFilter) ([]models.Campaign, error)
	Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in services.CampaignInput) (*models.Campaign, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status string) (*models.Campaign, error)
	Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error
	Events(ctx context.Context, caller auth.Identity, id uuid.UUID, limit, offset int) ([]models.AuditLog, error)
	CheckExpired(ctx context.Context) (int, error)
	DeleteExpired(ctx context.Context) (int, error)
}

type CampaignHandler struct {
	campaigns CampaignOps
	log       *zap.Logger
}

func NewCampaignHandler(campaigns CampaignOps, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, log: log}
}

func campaignInput(req dto.CampaignRequest) services.CampaignInput {
	return services.CampaignInput{
		Title:          req.Title,
		Description:    req.Description,
		Budget:         req.Budget,
		Status:         req.Status,
		TargetAudience: req.TargetAudience,
		ContentTypes:   req.ContentTypes,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Duration:       req.Duration,
		Requirements:   req.Requirements,
	}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	campaign, err := h.campaigns.Create(c.UserContext(), middleware.GetIdentity(c), campaignInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid campaign id")
	}

	campaign, err := h.campaigns.Get(c.UserContext(), middleware.GetIdentity(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if campaign == nil {
		return c.JSON(dto.NullableResponse{OK: true, Data: nil})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	includeExpired := c.QueryBool("include_expired", false)

	campaigns, err := h.campaigns.ListMine(c.UserContext(), middleware.GetIdentity(c), includeExpired)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) BrowseCampaigns(c *fiber.Ctx) error {
	filter := repositories.CampaignFilter{
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	if v := c.Query("content_type"); v != "" {
		filter.ContentType = &v
	}
	if v := c.Query("q"); v != "" {
		filter.Search = &v
	}

	campaigns, err := h.campaigns.Browse(c.UserContext(), middleware.GetIdentity(c), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid campaign id")
	}

	var req dto.CampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	updated, err := h.campaigns.Update(c.UserContext(), middleware.GetIdentity(c), id, campaignInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *CampaignHandler) UpdateCampaignStatus(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid campaign id")
	}

	var req dto.UpdateCampaignStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return badRequest(c, "status is required")
	}

	updated, err := h.campaigns.UpdateStatus(c.UserContext(), middleware.GetIdentity(c), id, req.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid campaign id")
	}

	if err := h.campaigns.Delete(c.UserContext(), middleware.GetIdentity(c), id); err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *CampaignHandler) GetCampaignEvents(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid campaign id")
	}

	logs, err := h.campaigns.Events(c.UserContext(), middleware.GetIdentity(c), id,
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}

// CheckExpired runs the expiry sweep on demand. The worker runs it on a schedule too.
func (h *CampaignHandler) CheckExpired(c *fiber.Ctx) error {
	if err := middleware.GetIdentity(c).Require(); err != nil {
		return writeError(c, h.log, err)
	}

	n, err := h.campaigns.CheckExpired(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.CountResponse{Count: n}})
}

// DeleteExpired runs the expired cleanup on demand.
func (h *CampaignHandler) DeleteExpired(c *fiber.Ctx) error {
	if err := middleware.GetIdentity(c).Require(); err != nil {
		return writeError(c, h.log, err)
	}

	n, err := h.campaigns.DeleteExpired(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.CountResponse{Count: n}})
}
