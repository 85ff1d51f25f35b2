package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	//tygo:emit export type SyncRunStatus = typeof SyncRunStatusInProgress | typeof SyncRunStatusCompleted | typeof SyncRunStatusFailed;
	SyncRunStatusInProgress = "in_progress"
	SyncRunStatusCompleted  = "completed"
	SyncRunStatusFailed     = "failed"
)

const (
	//tygo:emit export type SyncRunTrigger = typeof SyncRunTriggerManual | typeof SyncRunTriggerAuto | typeof SyncRunTriggerCLI;
	SyncRunTriggerManual = "manual"
	SyncRunTriggerAuto   = "auto"
	SyncRunTriggerCLI    = "cli"
)

type SyncRun struct {
	bun.BaseModel `bun:"table:sync_runs,alias:sr" tstype:"-"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	StartDate Date      `bun:"start_date,type:text" json:"start_date"`
	EndDate   Date      `bun:"end_date,type:text" json:"end_date"`
	Trigger   string    `bun:",nullzero" json:"trigger" tstype:"SyncRunTrigger"`
	Status    string    `bun:",nullzero" json:"status" tstype:"SyncRunStatus"`
	Inserted  int       `json:"inserted"`
	Updated   int       `json:"updated"`
	Error     *string   `json:"error,omitempty"`
}
