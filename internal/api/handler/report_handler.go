package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/modportal/portal-api/internal/api/metrics"
	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

// IdempotencyHeader lets clients retry a create without duplicating it.
const IdempotencyHeader = "Idempotency-Key"

// ReportHandler serves the task and bug routes. One instance per kind.
type ReportHandler struct {
	kind    domain.EntityType
	service ports.ReportService
	metrics *metrics.Metrics
}

func NewTaskHandler(service ports.ReportService, m *metrics.Metrics) *ReportHandler {
	return &ReportHandler{kind: domain.EntityTask, service: service, metrics: m}
}

func NewBugHandler(service ports.ReportService, m *metrics.Metrics) *ReportHandler {
	return &ReportHandler{kind: domain.EntityBug, service: service, metrics: m}
}

func (h *ReportHandler) messages() (created, updated string) {
	if h.kind == domain.EntityBug {
		return "Bug report created successfully", "Bug status updated"
	}
	return "Task created successfully", "Task status updated"
}

// Create stores a new task or bug report.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        description      formData  string  true   "What has to be done"
// @Param        media            formData  file    false  "Screenshot or video"
// @Param        Idempotency-Key  header    string  false  "Client retry key"
// @Success      201  {object}  createdResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/tasks [post]
func (h *ReportHandler) Create(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	input := ports.CreateReportInput{
		Description:    c.FormValue("description"),
		IdempotencyKey: c.Request().Header.Get(IdempotencyHeader),
	}

	fh, err := c.FormFile("media")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return domain.NewValidationError("invalid media upload")
	default:
		f, err := fh.Open()
		if err != nil {
			return domain.NewValidationError("invalid media upload")
		}
		defer f.Close()
		input.Media = &ports.MediaUpload{Filename: fh.Filename, Content: f}
	}

	id, err := h.service.Create(c.Request().Context(), identity, input)
	if err != nil {
		return err
	}

	h.metrics.EntitiesCreatedTotal.WithLabelValues(string(h.kind)).Inc()
	created, _ := h.messages()
	return c.JSON(http.StatusCreated, createdResponse{ID: id, Message: created})
}

// List returns the reports visible to the caller, newest first. Tasks accept
// an optional ?status filter.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, in_progress, completed or rejected"
// @Success      200     {array}   domain.Report
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Router       /api/tasks [get]
func (h *ReportHandler) List(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	var status domain.Status
	if h.kind == domain.EntityTask {
		status = domain.Status(c.QueryParam("status"))
	}

	reports, err := h.service.List(c.Request().Context(), identity, status)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	return c.JSON(http.StatusOK, reports)
}

// UpdateStatus moves a report to a new status and assigns the reviewer.
//
// @Summary      Update task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Task ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/tasks/{id}/status [put]
func (h *ReportHandler) UpdateStatus(c echo.Context) error {
	_, updated := h.messages()
	return updateStatus(c, h.metrics, h.kind, h.service.UpdateStatus, updated)
}
