package domain

import "context"

// ReviewSource loads the joined dataset rows. Implementations are read-only;
// the handle's lifetime is owned by the caller.
type ReviewSource interface {
	LoadJoinedRows(ctx context.Context) ([]JoinedRow, error)
}
