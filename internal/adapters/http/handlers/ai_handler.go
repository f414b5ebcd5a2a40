package handlers

import (
	"fmt"
	"strings"

	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AIHandler forwards assistant calls to the AI services
type AIHandler struct {
	aiService *services.AIService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Chat asks the assistant a question
// @Summary Chat with the assistant
// @Description language is en or tl; empty lets the assistant detect it
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChatInput true "Message"
// @Success 200 {object} response.Response{data=services.ChatResult}
// @Failure 502 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /ai/chat [post]
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.ChatInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	res, err := h.aiService.Chat(c.Context(), in, string(a.Role), fmt.Sprintf("user-%d", a.UserID))
	if err != nil {
		return serviceError(c, err, "Failed to reach the assistant")
	}
	return response.Success(c, "", res)
}

// PriorityPreview scores a draft request without saving it
// @Summary Preview request priority
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PriorityInput true "Draft request"
// @Success 200 {object} response.Response{data=services.PriorityResult}
// @Failure 503 {object} response.Response
// @Router /ai/priority-preview [post]
func (h *AIHandler) PriorityPreview(c *fiber.Ctx) error {
	var in services.PriorityInput
	if ok, err := bind(c, &in); !ok {
		return err
	}
	in.Category = strings.ToUpper(in.Category)

	res, err := h.aiService.Prioritize(c.Context(), in)
	if err != nil {
		return serviceError(c, err, "Failed to reach the prioritization service")
	}
	return response.Success(c, "", res)
}
