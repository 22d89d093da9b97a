package toolshed

import (
	"context"
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
)

// Checkout submits card details to the payment provider. Validation errors
// are returned immediately with an error toast; the settlement arrives later
// and queues a success or decline toast.
//
// Only one checkout may be pending at a time. The provider is called without
// the controller lock, so it may report the settlement from inside Submit.
func (c *Controller) Checkout(ctx context.Context, req domain.ChargeRequest) error {
	if err := c.lock(); err != nil {
		return err
	}
	if c.checkout != nil {
		c.mu.Unlock()
		return domain.ErrCheckoutInProgress
	}
	c.seq++
	seq := c.seq
	c.checkout = &pendingCheckout{seq: seq, plan: req.Plan}
	c.mu.Unlock()

	handle, err := c.payments.Submit(ctx, req, func(result domain.ChargeResult) {
		c.settle(seq, result)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.checkout
	if pending == nil || pending.seq != seq {
		// cancelled or closed while Submit ran
		if handle != nil {
			handle.Cancel()
		}
		if c.closed {
			return domain.ErrClosed
		}
		return err
	}
	if err != nil {
		c.checkout = nil
		c.toast(domain.SeverityError, "Payment failed", err.Error())
		return err
	}

	if handle == nil {
		handle = completed{}
	}
	pending.handle = handle
	c.emitCheckout(domain.EventCheckoutStarted, req.Plan, nil)
	c.logger.Debug("checkout started", "plan", req.Plan, "amount_cents", req.AmountCents)
	if pending.early != nil {
		c.finish(*pending.early)
	}
	return nil
}

// settle runs on the payment provider's goroutine, or inside Submit.
func (c *Controller) settle(seq uint64, result domain.ChargeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.checkout == nil || c.checkout.seq != seq {
		return
	}
	if c.checkout.handle == nil {
		c.checkout.early = &result
		return
	}
	c.finish(result)
}

// finish must be called with mu held and a checkout pending.
func (c *Controller) finish(result domain.ChargeResult) {
	plan := c.checkout.plan
	c.checkout = nil

	if result.Approved {
		c.toast(domain.SeveritySuccess, "Payment successful", fmt.Sprintf("Reference %s", result.Reference))
	} else {
		c.toast(domain.SeverityError, "Payment declined", result.Reason)
	}
	c.emitCheckout(domain.EventCheckoutSettled, plan, &result)
	c.logger.Info("checkout settled", "plan", plan, "approved", result.Approved, "reference", result.Reference)
}

// CancelCheckout abandons a pending checkout. It reports whether one was pending.
func (c *Controller) CancelCheckout() bool {
	if err := c.lock(); err != nil {
		return false
	}
	defer c.mu.Unlock()

	if c.checkout == nil {
		return false
	}
	if c.checkout.handle != nil {
		c.checkout.handle.Cancel()
	}
	c.emitCheckout(domain.EventCheckoutCancelled, c.checkout.plan, nil)
	c.checkout = nil
	return true
}

// CheckoutPending reports whether a checkout awaits settlement.
func (c *Controller) CheckoutPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkout != nil
}

// completed is the handle of a charge the provider settled synchronously.
type completed struct{}

func (completed) Cancel() bool { return false }
