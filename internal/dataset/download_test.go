package dataset_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradlet-ml/gradlet/internal/dataset"
)

func TestDownloadFrom(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		w.Write([]byte("payload for " + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, dataset.DownloadFrom(context.Background(), dir, srv.URL+"/"))

	assert.Len(t, requests, 4, "all four IDX files are fetched")
	for _, name := range []string{
		"train-images-idx3-ubyte.gz",
		"train-labels-idx1-ubyte.gz",
		"t10k-images-idx3-ubyte.gz",
		"t10k-labels-idx1-ubyte.gz",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, "%s must exist", name)
		assert.Contains(t, string(data), name)
	}

	// No stray temp files from the atomic rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestDownloadSkipsExistingFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for %s", r.URL.Path)
	}))
	defer srv.Close()

	dir := t.TempDir()
	for _, name := range []string{
		"train-images-idx3-ubyte.gz",
		"train-labels-idx1-ubyte",
		"t10k-images-idx3-ubyte.gz",
		"t10k-labels-idx1-ubyte.gz",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	// The plain train-labels file counts as present even without its .gz.
	require.NoError(t, dataset.DownloadFrom(context.Background(), dir, srv.URL+"/"))
}

func TestDownloadPropagatesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := dataset.DownloadFrom(context.Background(), t.TempDir(), srv.URL+"/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
