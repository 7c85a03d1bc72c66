package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecipeState(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "recipes_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name        string
		filename    string
		data        []byte
		expectError bool
	}{
		{
			name:        "valid recipes file",
			filename:    "recipes.json",
			data:        []byte(`[{"title": "Pancakes", "servings": 4, "ingredients": []}]`),
			expectError: false,
		},
		{
			name:        "empty recipes file",
			filename:    "empty.json",
			data:        []byte(`[]`),
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.filename)

			// Create the test file
			err := os.WriteFile(filePath, tt.data, 0644)
			require.NoError(t, err)

			recipeState := NewFileRecipeState(filePath)
			loadedData, err := recipeState.Load(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.data, loadedData)
		})
	}

	t.Run("load nonexistent file", func(t *testing.T) {
		nonexistentPath := filepath.Join(tmpDir, "nonexistent.json")
		recipeState := NewFileRecipeState(nonexistentPath)
		_, err := recipeState.Load(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFileListSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lists")
	sink := NewFileListSink(dir)

	t.Run("creates directory and writes file", func(t *testing.T) {
		err := sink.Save(context.Background(), "grocery_list.txt", []byte("Milk: 1.00 l\n"))
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(dir, "grocery_list.txt"))
		require.NoError(t, err)
		assert.Equal(t, "Milk: 1.00 l\n", string(got))
	})

	t.Run("overwrites previous save", func(t *testing.T) {
		require.NoError(t, sink.Save(context.Background(), "grocery_list.txt", []byte("Eggs: 12.00 unit\n")))

		got, err := os.ReadFile(filepath.Join(dir, "grocery_list.txt"))
		require.NoError(t, err)
		assert.Equal(t, "Eggs: 12.00 unit\n", string(got))
	})

	t.Run("name cannot escape directory", func(t *testing.T) {
		require.NoError(t, sink.Save(context.Background(), "../escape.txt", []byte("x")))

		_, err := os.Stat(filepath.Join(dir, "escape.txt"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
		assert.True(t, os.IsNotExist(err))
	})
}
