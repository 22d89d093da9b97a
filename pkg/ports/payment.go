package ports

import (
	"context"

	"github.com/aretw0/toolshed/pkg/domain"
)

// Cancellable is a pending operation that can be abandoned.
type Cancellable interface {
	// Cancel stops the operation. It returns false if it already completed.
	Cancel() bool
}

// PaymentGateway submits card details and reports the settlement later.
type PaymentGateway interface {
	// Submit validates the request immediately and schedules settlement.
	// done is called at most once, and not after the returned handle was
	// cancelled. It may run on any goroutine, including inside Submit; a nil
	// handle means the charge already settled.
	Submit(ctx context.Context, req domain.ChargeRequest, done func(domain.ChargeResult)) (Cancellable, error)
}
