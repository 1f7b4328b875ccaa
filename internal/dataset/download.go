package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultMirror serves the original IDX files; yann.lecun.com itself has
// been unreliable for years.
const DefaultMirror = "https://storage.googleapis.com/cvdf-datasets/mnist/"

var downloadFiles = []string{
	"train-images-idx3-ubyte.gz",
	"train-labels-idx1-ubyte.gz",
	"t10k-images-idx3-ubyte.gz",
	"t10k-labels-idx1-ubyte.gz",
}

// Download fetches the four MNIST files into dir, skipping any that are
// already present (compressed or not). The context bounds the whole
// operation; a canceled download leaves no partial files behind.
func Download(ctx context.Context, dir string) error {
	return DownloadFrom(ctx, dir, DefaultMirror)
}

// DownloadFrom is Download against an alternate mirror base URL.
func DownloadFrom(ctx context.Context, dir, baseURL string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	for _, name := range downloadFiles {
		dest := filepath.Join(dir, name)
		if fileExists(dest) || fileExists(dest[:len(dest)-len(".gz")]) {
			continue
		}
		if err := fetch(ctx, client, baseURL+name, dest); err != nil {
			return fmt.Errorf("download %s: %w", name, err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// fetch downloads url into dest via a temp file and rename, so readers
// never observe a half-written dataset file.
func fetch(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
