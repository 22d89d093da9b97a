package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CatalogContractTest is a reusable test suite that verifies if an adapter complies with ports.Catalog.
// want lists the tools the adapter was seeded with.
func CatalogContractTest(t *testing.T, catalog ports.Catalog, want []domain.Tool) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Success", func(t *testing.T) {
		for _, tool := range want {
			got, err := catalog.Get(ctx, tool.ID)
			require.NoError(t, err, "unexpected error getting tool %s", tool.ID)
			assert.Equal(t, tool.ID, got.ID)
			assert.Equal(t, tool.Name, got.Name)
			assert.Equal(t, tool.Category, got.Category)
			assert.InDelta(t, tool.Rating, got.Rating, 0.001)
		}
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := catalog.Get(ctx, "non-existent-tool")
		if !errors.Is(err, domain.ErrToolNotFound) {
			t.Errorf("expected ErrToolNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		tools, err := catalog.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tools, len(want))

		ids := make([]string, 0, len(tools))
		for _, tool := range tools {
			ids = append(ids, tool.ID)
		}
		for _, tool := range want {
			assert.Contains(t, ids, tool.ID)
		}
	})
}

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store ports.SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := &domain.Snapshot{
			SessionID: sessionID,
			Route: domain.RouteRecord{
				Screen: domain.ScreenToolDetail,
				Params: domain.Params{"tool_id": "chatgpt"},
			},
			Compare: []domain.ComparisonItem{
				{ID: "chatgpt", Name: "ChatGPT", Category: "Chat", Rating: 4.8, PriceLabel: "Freemium"},
			},
			Wizards: map[string]domain.WizardSnapshot{
				"onboarding": {Step: 2, Steps: 3, Valid: []bool{true, false, false}, Dirty: true},
			},
			Context: domain.SessionContext{
				Theme: domain.ThemeDark,
				User:  &domain.User{ID: "u1", Email: "admin@toolshed.dev", Role: domain.RoleAdmin},
			},
		}

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Route.Screen, loaded.Route.Screen)
		assert.Equal(t, "chatgpt", loaded.Route.Params["tool_id"])
		assert.Equal(t, snap.Compare, loaded.Compare)
		assert.Equal(t, snap.Wizards, loaded.Wizards)
		assert.Equal(t, snap.Context, loaded.Context)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Compare = nil

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, again.Compare, 1, "mutating a loaded snapshot must not change the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, &domain.Snapshot{SessionID: sessionID})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, &domain.Snapshot{SessionID: id1})
		_ = store.Save(ctx, id2, &domain.Snapshot{SessionID: id2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
