package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*LocalAssetStore, string) {
	t.Helper()
	root := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLocalAssetStore(root, "products", DefaultImagePolicy(0), logger), root
}

func upload(name string, size int) *domain.FileUpload {
	return &domain.FileUpload{
		Filename:    name,
		Content:     make([]byte, size),
		ContentType: "application/octet-stream",
	}
}

func TestValidate(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name    string
		file    *domain.FileUpload
		wantErr string
	}{
		{"valid png", upload("photo.png", 1024), ""},
		{"valid jpeg mixed case", upload("photo.JPEG", 1024), ""},
		{"nil file", nil, "empty"},
		{"empty content", upload("photo.png", 0), "empty"},
		{"no extension", upload("photo", 1024), "extension not allowed"},
		{"disallowed extension", upload("tool.exe", 1024), "extension not allowed"},
		{"too large", upload("big.png", 5*1024*1024+1), "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Validate(tt.file)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNeverTouchesDisk(t *testing.T) {
	store, root := newTestStore(t)

	require.Error(t, store.Validate(upload("tool.exe", 10)))
	require.NoError(t, store.Validate(upload("ok.png", 10)))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateName(t *testing.T) {
	store, _ := newTestStore(t)

	first := store.GenerateName("photo.PNG")
	second := store.GenerateName("photo.PNG")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".png"))

	assert.False(t, strings.Contains(store.GenerateName("noext"), "."))
}

func TestSaveWritesUnderSubdir(t *testing.T) {
	store, root := newTestStore(t)

	file := &domain.FileUpload{Filename: "photo.png", Content: []byte("image-bytes")}
	relPath, err := store.Save(context.Background(), file)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, "products/"))
	assert.True(t, strings.HasSuffix(relPath, ".png"))

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), content)
}

func TestSaveIsCollisionFreeUnderRepeatedCalls(t *testing.T) {
	store, root := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		relPath, err := store.Save(context.Background(), upload("same.png", 8))
		require.NoError(t, err)
		assert.False(t, seen[relPath], "duplicate path %s", relPath)
		seen[relPath] = true
	}

	entries, err := os.ReadDir(filepath.Join(root, "products"))
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestSaveCancelledContext(t *testing.T) {
	store, root := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, upload("photo.png", 8))
	require.Error(t, err)
	var aErr *domain.AssetError
	assert.ErrorAs(t, err, &aErr)

	_, statErr := os.Stat(filepath.Join(root, "products"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, root := newTestStore(t)

	relPath, err := store.Save(context.Background(), upload("photo.png", 8))
	require.NoError(t, err)

	store.Delete(relPath)
	_, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
	assert.True(t, os.IsNotExist(statErr))

	// Second delete of the same path and a delete of a path that never
	// existed must both stay silent.
	store.Delete(relPath)
	store.Delete("products/never-existed.png")
	store.Delete("")
}
