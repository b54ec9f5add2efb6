package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/modportal/portal-api/internal/api/metrics"
	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

type ApplicationHandler struct {
	service ports.ApplicationService
	metrics *metrics.Metrics
}

func NewApplicationHandler(service ports.ApplicationService, m *metrics.Metrics) *ApplicationHandler {
	return &ApplicationHandler{service: service, metrics: m}
}

// Create submits a staff application.
//
// @Summary      Submit an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body             body      createApplicationRequest  true   "Position and the seven answers"
// @Param        Idempotency-Key  header    string                    false  "Client retry key"
// @Success      201  {object}  createdResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /api/applications [post]
func (h *ApplicationHandler) Create(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	var req createApplicationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	position, ok := domain.ParsePosition(req.Position)
	if !ok {
		position = domain.Position(req.Position)
	}

	id, err := h.service.Submit(c.Request().Context(), identity, ports.SubmitApplicationInput{
		Position:       position,
		Answers:        req.Answers,
		IdempotencyKey: c.Request().Header.Get(IdempotencyHeader),
	})
	if err != nil {
		return err
	}

	h.metrics.EntitiesCreatedTotal.WithLabelValues(string(domain.EntityApplication)).Inc()
	return c.JSON(http.StatusCreated, createdResponse{ID: id, Message: "Application submitted successfully"})
}

// List returns the applications visible to the caller, newest first.
//
// @Summary      List applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   applicationResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/applications [get]
func (h *ApplicationHandler) List(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	apps, err := h.service.List(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	out := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus approves or rejects an application.
//
// @Summary      Update application status
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Application ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/applications/{id}/status [put]
func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	return updateStatus(c, h.metrics, domain.EntityApplication, h.service.UpdateStatus, "Application status updated")
}
