package handlers

import (
	"context"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/http/dto"
	"github.com/amplyst/backend/internal/middleware"
	"github.com/amplyst/backend/internal/models"
	"github.com/amplyst/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProfileOps is implemented by services.ProfileService.
type ProfileOps interface {
	Me(ctx context.Context, caller auth.Identity) (*models.Profile, error)
	CreateInfluencerProfile(ctx context.Context, caller auth.Identity, in services.InfluencerProfileInput) (*models.InfluencerProfile, error)
	CreateBrandProfile(ctx context.Context, caller auth.Identity, in services.BrandProfileInput) (*models.BrandProfile, error)
	UpdateInfluencerProfile(ctx context.Context, caller auth.Identity, in services.InfluencerProfileInput) (*models.InfluencerProfile, error)
	UpdateBrandProfile(ctx context.Context, caller auth.Identity, in services.BrandProfileInput) (*models.BrandProfile, error)
}

type UserHandler struct {
	profiles ProfileOps
	log      *zap.Logger
}

func NewUserHandler(profiles ProfileOps, log *zap.Logger) *UserHandler {
	return &UserHandler{profiles: profiles, log: log}
}

func influencerInput(req dto.InfluencerProfileRequest) services.InfluencerProfileInput {
	return services.InfluencerProfileInput{
		Niche:          req.Niche,
		FollowerCount:  req.FollowerCount,
		EngagementRate: req.EngagementRate,
		Platforms:      req.Platforms,
		Bio:            req.Bio,
	}
}

func brandInput(req dto.BrandProfileRequest) services.BrandProfileInput {
	return services.BrandProfileInput{
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
		BudgetRange: req.BudgetRange,
		Website:     req.Website,
	}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	profile, err := h.profiles.Me(c.UserContext(), middleware.GetIdentity(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

func (h *UserHandler) CreateInfluencerProfile(c *fiber.Ctx) error {
	var req dto.InfluencerProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := h.profiles.CreateInfluencerProfile(c.UserContext(), middleware.GetIdentity(c), influencerInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *UserHandler) CreateBrandProfile(c *fiber.Ctx) error {
	var req dto.BrandProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := h.profiles.CreateBrandProfile(c.UserContext(), middleware.GetIdentity(c), brandInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *UserHandler) UpdateInfluencerProfile(c *fiber.Ctx) error {
	var req dto.InfluencerProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := h.profiles.UpdateInfluencerProfile(c.UserContext(), middleware.GetIdentity(c), influencerInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *UserHandler) UpdateBrandProfile(c *fiber.Ctx) error {
	var req dto.BrandProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := h.profiles.UpdateBrandProfile(c.UserContext(), middleware.GetIdentity(c), brandInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}
