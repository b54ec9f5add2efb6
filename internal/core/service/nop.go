package service

import (
	"context"

	"github.com/modportal/portal-api/internal/core/domain"
)

// NopNotifier drops status-change events.
type NopNotifier struct{}

func (NopNotifier) StatusChanged(context.Context, domain.StatusChangeEvent) error { return nil }
