/*
lifecycle.go - Period status state machine

PURPOSE:
  Models the reconciliation period lifecycle as an explicit enumerated
  state with a transition function, instead of boolean flags scattered
  across fields.

STATE MACHINE:
  draft -> finalized
  in_progress -> finalized
  review -> finalized

  Finalization is the ONLY enforced transition, and it is one-way:
  there is no reopen operation. Every other requested transition is
  rejected with a typed error.

SEE ALSO:
  - engine.go: Finalize sets the finalized state on a ledger
*/
package recon

// Status is the lifecycle state of a reconciliation period.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusFinalized  Status = "finalized"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusReview, StatusFinalized:
		return true
	}
	return false
}

// CanMutate reports whether a period in this status accepts balance
// mutations. Only finalized periods are closed.
func (s Status) CanMutate() bool { return s != StatusFinalized }

// Transition validates a requested status change and returns the new
// status. Only transitions into StatusFinalized from an open state are
// permitted; a finalized period rejects everything with
// ErrLockedPeriod, and any other pair fails validation.
func Transition(from, to Status) (Status, error) {
	if !from.Valid() {
		return from, &ValidationError{Field: "status", Message: "unknown status " + string(from)}
	}
	if !to.Valid() {
		return from, &ValidationError{Field: "status", Message: "unknown status " + string(to)}
	}
	if from == StatusFinalized {
		if to == StatusFinalized {
			return from, nil // idempotent no-op
		}
		return from, ErrLockedPeriod
	}
	if to != StatusFinalized {
		return from, &ValidationError{
			Field:   "status",
			Message: "only finalization is supported: " + string(from) + " -> " + string(to),
		}
	}
	return StatusFinalized, nil
}
