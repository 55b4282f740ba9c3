package service

import (
	"context"
	"time"

	"liquid_handler/internal/logger"
	"liquid_handler/internal/models"
	"liquid_handler/internal/repository"

	"github.com/google/uuid"
)

// journal appends best-effort: a failed write is logged and never fails a
// pump command.
type journal struct {
	repo repository.EventRepo
	log  *logger.Logger
	pump string
}

func (j journal) record(ctx context.Context, at time.Time, typ, description string, meta map[string]any) {
	if j.repo == nil {
		return
	}
	err := j.repo.Append(ctx, models.PumpEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  at.UTC(),
		Pump:        j.pump,
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
	if err != nil {
		j.log.Errorw("journal_append_failed", "err", err, "pump", j.pump, "type", typ)
	}
}
