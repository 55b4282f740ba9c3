package repository

import (
	"context"
	"database/sql"
	"time"

	"liquid_handler/internal/models"
)

// EventRepo is the append-only pump journal.
type EventRepo interface {
	Append(ctx context.Context, e models.PumpEvent) error
	List(ctx context.Context, f EventFilter) ([]models.PumpEvent, error)
}

// EventFilter narrows List. Zero values mean "no bound".
type EventFilter struct {
	From time.Time
	To   time.Time
	Pump string
	Type string
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
