package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/goaltext/goaltext/internal/phone"
)

// Handler exposes identity bootstrap endpoints.
type Handler struct {
	service *Service
	region  string
}

// NewHandler constructs an identity HTTP handler. region is the default
// country used to read phone numbers.
func NewHandler(service *Service, region string) *Handler {
	return &Handler{service: service, region: region}
}

type registerRequest struct {
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Timezone    string `json:"timezone"`
}

type userResponse struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name,omitempty"`
	Timezone    string   `json:"timezone"`
	Phones      []string `json:"phones"`
	Activated   bool     `json:"activated"`
	Created     bool     `json:"created"`
}

// Register creates (or returns) the identity for a phone. The user finishes
// signup by texting YES from that phone.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	e164, err := phone.Normalize(req.Phone, h.region)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, created, err := h.service.Register(c.UserContext(), RegisterInput{
		Phone:       e164,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Timezone:    req.Timezone,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.Status(status).JSON(userResponse{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Timezone:    user.Timezone,
		Phones:      user.Phones,
		Activated:   user.Activated,
		Created:     created,
	})
}
