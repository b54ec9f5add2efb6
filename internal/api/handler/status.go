package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/modportal/portal-api/internal/api/metrics"
	"github.com/modportal/portal-api/internal/core/domain"
)

type statusUpdater func(ctx context.Context, actor domain.Identity, id int64, status domain.Status) error

// updateStatus is the shared body of every PUT /:id/status route.
func updateStatus(c echo.Context, m *metrics.Metrics, entity domain.EntityType, update statusUpdater, ack string) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	status := domain.Status(req.Status)

	if err := update(c.Request().Context(), identity, id, status); err != nil {
		if reason := denialReason(err); reason != "" {
			m.TransitionsDeniedTotal.WithLabelValues(string(entity), reason).Inc()
		}
		return err
	}

	m.StatusTransitionsTotal.WithLabelValues(string(entity), string(status)).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: ack})
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrValidation):
		return "invalid_status"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return ""
}
