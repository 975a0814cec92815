package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedDirectoryGetAll(t *testing.T) {
	directory, err := NewEmbeddedDirectory()
	require.NoError(t, err)

	products, err := directory.GetAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 8)
}

func TestEmbeddedDirectoryGetByID(t *testing.T) {
	directory, err := NewEmbeddedDirectory()
	require.NoError(t, err)

	found, err := directory.GetByID(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, "Solitaire Diamond Ring", found.Name)
	assert.Equal(t, "86000", found.Price.String())
}

func TestEmbeddedDirectoryGetByIDNotFound(t *testing.T) {
	directory, err := NewEmbeddedDirectory()
	require.NoError(t, err)

	_, err = directory.GetByID(context.Background(), 999)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestEmbeddedDirectoryGetByCategory(t *testing.T) {
	directory, err := NewEmbeddedDirectory()
	require.NoError(t, err)

	products, err := directory.GetByCategory(context.Background(), "necklaces")

	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, "Necklaces", p.Category)
	}
}

func TestEmbeddedDirectoryGetByCategoryUnknownSlug(t *testing.T) {
	directory, err := NewEmbeddedDirectory()
	require.NoError(t, err)

	products, err := directory.GetByCategory(context.Background(), "watches")

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestEmbeddedDirectorySearch(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedCount int
	}{
		{name: "matches product name case insensitively", query: "JHUMKA", expectedCount: 1},
		{name: "matches category", query: "earrings", expectedCount: 1},
		{name: "no match returns empty", query: "wristwatch", expectedCount: 0},
	}

	directory, err := NewEmbeddedDirectory()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := directory.Search(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Len(t, products, tt.expectedCount)
		})
	}
}

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "necklaces", CategorySlug("Necklaces"))
	assert.Equal(t, "temple-jewellery", CategorySlug("Temple Jewellery"))
}
