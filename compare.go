package toolshed

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
)

// AddToCompare resolves a tool in the catalog and adds it to the compare tray.
//
// A success toast follows an add. A full tray produces a warning toast and a
// duplicate an info toast; both errors are still returned.
func (c *Controller) AddToCompare(ctx context.Context, toolID string) error {
	if toolID == "" {
		return domain.ErrInvalidItem
	}
	tool, err := c.catalog.Get(ctx, toolID)
	if err != nil {
		return err
	}

	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	err = c.compare.Add(tool.ComparisonItem())
	switch {
	case err == nil:
		c.toast(domain.SeveritySuccess, "Added to comparison", fmt.Sprintf("%s is in your comparison tray.", tool.Name))
		c.emitCompare(domain.EventCompareAdd, tool.ID, "")
	case errors.Is(err, domain.ErrCapacityExceeded):
		c.toast(domain.SeverityWarning, "Comparison is full", fmt.Sprintf("You can compare up to %d tools at once.", c.compare.Capacity()))
		c.emitCompare(domain.EventCompareReject, tool.ID, "capacity")
	case errors.Is(err, domain.ErrDuplicateItem):
		c.toast(domain.SeverityInfo, "Already in comparison", fmt.Sprintf("%s is already selected.", tool.Name))
		c.emitCompare(domain.EventCompareReject, tool.ID, "duplicate")
	}
	return err
}

// RemoveFromCompare drops a tool from the tray. It reports whether it was there.
func (c *Controller) RemoveFromCompare(toolID string) bool {
	if err := c.lock(); err != nil {
		return false
	}
	defer c.mu.Unlock()

	if !c.compare.Remove(toolID) {
		return false
	}
	c.toast(domain.SeverityInfo, "Removed from comparison", "")
	c.emitCompare(domain.EventCompareRemove, toolID, "")
	return true
}

// ClearCompare empties the tray.
func (c *Controller) ClearCompare() error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	c.compare.Clear()
	c.emitCompare(domain.EventCompareClear, "", "")
	return nil
}

// CompareItems returns the selected items in insertion order.
func (c *Controller) CompareItems() []domain.ComparisonItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compare.Items()
}

// CanCompare reports whether at least two tools are selected.
func (c *Controller) CanCompare() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compare.CanCompare()
}
