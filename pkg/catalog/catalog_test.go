package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []domain.Tool{
	{ID: "cafe", Name: "Café Writer", Description: "Writes menus", Category: "Writing", Rating: 4.2, Pricing: domain.PricingFree},
	{ID: "pixel", Name: "Pixel", Description: "Image generation", Category: "Image", Rating: 4.8, Pricing: domain.PricingPaid, Tags: []string{"art"}},
	{ID: "atlas", Name: "Atlas", Description: "Research agent", Category: "Research", Rating: 4.8, Pricing: domain.PricingFreemium, Status: domain.StatusBeta},
}

func TestMemory_Contract(t *testing.T) {
	mem, err := catalog.NewMemory(sample...)
	require.NoError(t, err)
	tests.CatalogContractTest(t, mem, sample)
}

func TestMemory_Validation(t *testing.T) {
	_, err := catalog.NewMemory(sample[0], sample[0])
	assert.ErrorContains(t, err, "duplicate")

	_, err = catalog.NewMemory(domain.Tool{Name: "anonymous"})
	assert.Error(t, err)

	_, err = catalog.NewMemory(domain.Tool{ID: "x", Name: "X", Rating: 7})
	assert.Error(t, err)

	_, err = catalog.NewMemory(domain.Tool{ID: "x", Name: "X", Pricing: "barter"})
	assert.Error(t, err)
}

func TestMemory_DefaultsStatusAndCopies(t *testing.T) {
	mem, err := catalog.NewMemory(sample...)
	require.NoError(t, err)

	got, err := mem.Get(context.Background(), "pixel")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	got.Tags[0] = "changed"
	again, _ := mem.Get(context.Background(), "pixel")
	assert.Equal(t, "art", again.Tags[0])
}

func TestBuiltin(t *testing.T) {
	ctx := context.Background()
	c := catalog.Builtin()

	tools, err := c.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(tools), 10)

	gpt, err := c.Get(ctx, "chatgpt")
	require.NoError(t, err)
	assert.Equal(t, "ChatGPT", gpt.Name)
	assert.Equal(t, domain.PricingFreemium, gpt.Pricing)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	mem, err := catalog.NewMemory(sample...)
	require.NoError(t, err)

	ids := func(tools []domain.Tool) []string {
		out := make([]string, 0, len(tools))
		for _, tool := range tools {
			out = append(out, tool.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		query catalog.Query
		want  []string
	}{
		{"everything by rating then name", catalog.Query{}, []string{"atlas", "pixel", "cafe"}},
		{"accent folded", catalog.Query{Text: "CAFE"}, []string{"cafe"}},
		{"accent in query", catalog.Query{Text: "café"}, []string{"cafe"}},
		{"tag match", catalog.Query{Text: "art"}, []string{"pixel"}},
		{"category case insensitive", catalog.Query{Category: "image"}, []string{"pixel"}},
		{"pricing", catalog.Query{Pricing: domain.PricingFreemium}, []string{"atlas"}},
		{"status", catalog.Query{Status: domain.StatusBeta}, []string{"atlas"}},
		{"min rating", catalog.Query{MinRating: 4.5}, []string{"atlas", "pixel"}},
		{"limit", catalog.Query{Limit: 1}, []string{"atlas"}},
		{"no match", catalog.Query{Text: "spreadsheet"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.Search(ctx, mem, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCategories(t *testing.T) {
	mem, err := catalog.NewMemory(sample...)
	require.NoError(t, err)

	cats, err := catalog.Categories(context.Background(), mem)
	require.NoError(t, err)
	assert.Equal(t, []string{"Image", "Research", "Writing"}, cats)
}

const yamlCatalog = `tools:
  - id: alpha
    name: Alpha
    category: Chat
    rating: 4
    pricing: free
`

const jsonCatalog = `{"tools": [{"id": "alpha", "name": "Alpha", "category": "Chat", "rating": 4, "pricing": "free"}]}`

const tomlCatalog = `[[tools]]
id = "alpha"
name = "Alpha"
category = "Chat"
rating = 4.0
pricing = "free"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFile_Formats(t *testing.T) {
	for name, content := range map[string]string{
		"tools.yaml": yamlCatalog,
		"tools.json": jsonCatalog,
		"tools.toml": tomlCatalog,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), name, content)
			f, err := catalog.NewFile(path)
			require.NoError(t, err)

			tests.CatalogContractTest(t, f, []domain.Tool{{ID: "alpha", Name: "Alpha", Category: "Chat", Rating: 4}})
		})
	}
}

func TestFile_RejectsUnknownFormatAndFields(t *testing.T) {
	dir := t.TempDir()

	_, err := catalog.NewFile(writeFile(t, dir, "tools.csv", "id,name"))
	assert.Error(t, err)

	_, err = catalog.NewFile(writeFile(t, dir, "bad.yaml", "tools:\n  - id: a\n    name: A\n    colour: red\n"))
	assert.Error(t, err)
}

func TestFile_ReloadKeepsPreviousOnError(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "tools.yaml", yamlCatalog)
	f, err := catalog.NewFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("tools: [ broken"), 0644))
	assert.Error(t, f.Reload())

	_, err = f.Get(ctx, "alpha")
	assert.NoError(t, err, "a failed reload keeps the last good content")
}

func TestFile_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	path := writeFile(t, t.TempDir(), "tools.yaml", yamlCatalog)
	f, err := catalog.NewFile(path)
	require.NoError(t, err)

	changes, err := f.Watch(ctx)
	require.NoError(t, err)

	updated := yamlCatalog + `  - id: beta
    name: Beta
    category: Code
    rating: 3
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload signal after writing the catalog file")
	}
	assert.Eventually(t, func() bool {
		_, err := f.Get(ctx, "beta")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
