package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTools(t *testing.T) {
	s := NewServer(catalog.Builtin())
	ctx := context.Background()

	resp, err := s.handleSearch(ctx, mcp.CallToolRequest{}, SearchArgs{Category: "Code"})
	require.NoError(t, err)
	require.NotZero(t, resp.Total)
	for _, tool := range resp.Tools {
		assert.Equal(t, "Code", tool.Category)
	}

	resp, err = s.handleSearch(ctx, mcp.CallToolRequest{}, SearchArgs{Text: "zzz-no-match"})
	require.NoError(t, err)
	assert.Empty(t, resp.Tools)
	assert.NotNil(t, resp.Tools)
}

func TestGetTool(t *testing.T) {
	s := NewServer(catalog.Builtin())

	tool, err := s.handleGet(context.Background(), mcp.CallToolRequest{}, GetArgs{ID: "claude"})
	require.NoError(t, err)
	assert.Equal(t, "Claude", tool.Name)

	_, err = s.handleGet(context.Background(), mcp.CallToolRequest{}, GetArgs{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestCompareTools(t *testing.T) {
	s := NewServer(catalog.Builtin())
	ctx := context.Background()

	resp, err := s.handleCompare(ctx, mcp.CallToolRequest{}, CompareArgs{IDs: []string{"chatgpt", "claude"}})
	require.NoError(t, err)
	assert.True(t, resp.CanCompare)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "chatgpt", resp.Items[0].ID)

	resp, err = s.handleCompare(ctx, mcp.CallToolRequest{}, CompareArgs{IDs: []string{"claude"}})
	require.NoError(t, err)
	assert.False(t, resp.CanCompare)

	_, err = s.handleCompare(ctx, mcp.CallToolRequest{}, CompareArgs{IDs: []string{"claude", "claude"}})
	assert.ErrorIs(t, err, domain.ErrDuplicateItem)

	_, err = s.handleCompare(ctx, mcp.CallToolRequest{}, CompareArgs{IDs: []string{"chatgpt", "claude", "cursor", "whisper"}})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestCatalogResource(t *testing.T) {
	s := NewServer(catalog.Builtin())

	contents, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CatalogURI, text.URI)

	var tools []domain.Tool
	require.NoError(t, json.Unmarshal([]byte(text.Text), &tools))
	assert.Len(t, tools, 15)
}
