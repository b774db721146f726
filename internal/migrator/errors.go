package migrator

import "fmt"

// Phase names the pass a ticket failed in
type Phase string

const (
	PhaseUpsert   Phase = "upsert"
	PhaseBackfill Phase = "backfill"
)

// TicketError reports which ticket and pass a migration failure belongs to
type TicketError struct {
	TicketID int
	Phase    Phase
	Err      error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("ticket #%d (%s): %v", e.TicketID, e.Phase, e.Err)
}

func (e *TicketError) Unwrap() error {
	return e.Err
}
