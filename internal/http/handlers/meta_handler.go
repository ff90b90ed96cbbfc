package handlers

import (
	"github.com/amplyst/backend/internal/http/dto"
	"github.com/amplyst/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var predefinedNiches = []MetaOption{
	{ID: "beauty", Label: "Beauty & Skincare"},
	{ID: "fashion", Label: "Fashion"},
	{ID: "fitness", Label: "Health & Fitness"},
	{ID: "food", Label: "Food & Cooking"},
	{ID: "travel", Label: "Travel"},
	{ID: "tech", Label: "Technology"},
	{ID: "gaming", Label: "Gaming"},
	{ID: "finance", Label: "Finance"},
	{ID: "education", Label: "Education"},
	{ID: "entertainment", Label: "Entertainment"},
	{ID: "lifestyle", Label: "Lifestyle"},
	{ID: "parenting", Label: "Parenting & Family"},
	{ID: "music", Label: "Music"},
	{ID: "art", Label: "Art & Design"},
	{ID: "sports", Label: "Sports"},
	{ID: "business", Label: "Business"},
	{ID: "other", Label: "Other"},
}

var contentTypeLabels = map[string]string{
	"post":     "Feed post",
	"story":    "Story",
	"reel":     "Reel",
	"video":    "Long-form video",
	"short":    "Short video",
	"live":     "Live stream",
	"review":   "Product review",
	"unboxing": "Unboxing",
	"blog":     "Blog article",
}

var platformLabels = map[string]string{
	"instagram": "Instagram",
	"tiktok":    "TikTok",
	"youtube":   "YouTube",
	"twitter":   "X (Twitter)",
	"twitch":    "Twitch",
	"linkedin":  "LinkedIn",
	"facebook":  "Facebook",
}

// options keeps the order of ids and falls back to the id as label.
func options(ids []string, labels map[string]string) []MetaOption {
	out := make([]MetaOption, 0, len(ids))
	for _, id := range ids {
		label, ok := labels[id]
		if !ok {
			label = id
		}
		out = append(out, MetaOption{ID: id, Label: label})
	}
	return out
}

func (h *MetaHandler) GetNiches(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: predefinedNiches})
}

func (h *MetaHandler) GetContentTypes(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: options(models.ContentTypes, contentTypeLabels)})
}

func (h *MetaHandler) GetPlatforms(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: options(models.SocialPlatforms, platformLabels)})
}
