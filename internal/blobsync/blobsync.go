// Package blobsync mirrors a task and run data tree from Azure Blob Storage
// onto the local file system.
package blobsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// manifestName is the file in the cache directory that records the ETag of
// every downloaded blob.
const manifestName = "blobsync-manifest.json"

// BlobInfo describes one remote blob.
type BlobInfo struct {
	Name string
	ETag string
	Size int64
}

// Container is the remote side of a sync.
type Container interface {
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	Download(ctx context.Context, name string, dst *os.File) error
}

// Options configures a Pull.
type Options struct {
	// Prefix limits the sync to blobs under this prefix. It is stripped from
	// local file names.
	Prefix string
	// Dest is the local root the tasks/ and eval_runs/ trees are written to.
	Dest string
	// CacheDir holds the ETag manifest. Without it every blob is downloaded.
	CacheDir string
	Logger   *slog.Logger
}

// Result counts what a Pull did.
type Result struct {
	Downloaded int
	Unchanged  int
	Skipped    int
}

// Pull downloads every task and run file under opts.Prefix whose ETag
// differs from the last pull.
func Pull(ctx context.Context, c Container, opts Options) (res *Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Dest == "" {
		opts.Dest = "."
	}

	blobs, err := c.List(ctx, opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	manifest, err := loadManifest(opts.CacheDir)
	if err != nil {
		return nil, err
	}

	// Blobs already moved into place stay recorded even when a later one fails.
	defer func() {
		if saveErr := saveManifest(opts.CacheDir, manifest); saveErr != nil && err == nil {
			err = saveErr
		}
	}()

	res = &Result{}
	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel, ok := localName(b.Name, opts.Prefix)
		if !ok {
			logger.Debug("skipping blob outside data tree", "blob", b.Name)
			res.Skipped++
			continue
		}
		dst := filepath.Join(opts.Dest, filepath.FromSlash(rel))

		if b.ETag != "" && manifest[b.Name] == b.ETag {
			if _, err := os.Stat(dst); err == nil {
				res.Unchanged++
				continue
			}
		}

		if err := download(ctx, c, b.Name, dst); err != nil {
			return res, err
		}
		logger.Info("downloaded blob", "blob", b.Name, "path", dst, "bytes", b.Size)
		manifest[b.Name] = b.ETag
		res.Downloaded++
	}
	return res, nil
}

// localName maps a blob name to a path relative to the destination. Only
// blobs under tasks/ or eval_runs/ are part of the data tree.
// A prefix names a directory, so "v2" matches "v2/tasks/a.json" but not
// "v2tasks/a.json".
func localName(name, prefix string) (string, bool) {
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		var ok bool
		if name, ok = strings.CutPrefix(name, prefix+"/"); !ok {
			return "", false
		}
	}
	rel := strings.TrimPrefix(name, "/")
	clean := path.Clean(rel)
	if clean != rel || strings.HasPrefix(clean, "../") {
		return "", false
	}
	if !strings.HasPrefix(clean, "tasks/") && !strings.HasPrefix(clean, "eval_runs/") {
		return "", false
	}
	return clean, true
}

// download writes the blob to a temporary file next to dst and renames it
// into place.
func download(ctx context.Context, c Container, name, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".blobsync-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := c.Download(ctx, name, tmp); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("downloading %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("moving %s into place: %w", dst, err)
	}
	return nil
}

func loadManifest(cacheDir string) (map[string]string, error) {
	manifest := map[string]string{}
	if cacheDir == "" {
		return manifest, nil
	}
	data, err := os.ReadFile(filepath.Join(cacheDir, manifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return manifest, nil
		}
		return nil, fmt.Errorf("reading sync manifest: %w", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing sync manifest: %w", err)
	}
	return manifest, nil
}

func saveManifest(cacheDir string, manifest map[string]string) error {
	if cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cacheDir, manifestName), data, 0o644); err != nil {
		return fmt.Errorf("writing sync manifest: %w", err)
	}
	return nil
}
