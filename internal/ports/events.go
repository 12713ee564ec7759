package ports

import (
	"context"

	"github.com/Uzinex/Boost/internal/domain"
)

// Notifier receives fire-and-forget descriptions of committed mutations.
// Delivery failure never rolls back the mutation it describes.
type Notifier interface {
	Notify(ctx context.Context, event domain.LedgerEvent) error
	Close() error
}
