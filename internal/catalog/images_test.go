package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
)

func TestImageStore_Resolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cake.jpg"), []byte("jpg"), 0o600))
	store := catalog.NewImageStore(dir)

	path, err := store.Resolve("cake.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cake.jpg"), path)

	path, err = store.Resolve("../../cake.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cake.jpg"), path)

	_, err = store.Resolve("miel.jpg")
	require.True(t, errors.Is(err, catalog.ErrImageNotFound))

	_, err = store.Resolve("")
	require.ErrorIs(t, err, catalog.ErrImageNotFound)

	var nilStore *catalog.ImageStore
	_, err = nilStore.Resolve("cake.jpg")
	require.ErrorIs(t, err, catalog.ErrImageNotFound)
}
