package nefertem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// maxParallelUploads bounds concurrent artifact uploads.
const maxParallelUploads = 4

// ArtifactName derives the artifact name of an output file: the base name
// without extension, with underscores replaced by hyphens.
func ArtifactName(path string) string {
	base := filepath.Base(path)
	return strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "_", "-")
}

// ArtifactKey returns the object key of an output file of a run.
func ArtifactKey(project, runID, path string) string {
	return storage.JoinKey(project, "artifacts", "ntruns", runID, filepath.Base(path))
}

// DescribeFile computes size, hash, mime type and extension of a file.
func DescribeFile(path string) (*core.FileInfo, error) {
	f, err := os.Open(path) //nolint:gosec // path is an output of the run
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &core.FileInfo{
		Size:      size,
		Hash:      "sha256:" + hex.EncodeToString(h.Sum(nil)),
		MimeType:  mimeType,
		Extension: ext,
	}, nil
}

type upload struct {
	src  string
	url  string
	info *core.FileInfo
}

// uploadOutputs describes and uploads every output file. Results keep the
// order of files.
func uploadOutputs(ctx context.Context, store storage.ObjectStore, project, runID string, files []string, logger *slog.Logger) ([]upload, error) {
	uploads := make([]upload, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)

	for i, src := range files {
		g.Go(func() error {
			info, err := DescribeFile(src)
			if err != nil {
				return fmt.Errorf("failed to describe %s: %w", filepath.Base(src), err)
			}
			logger.Info("uploading artifact", slog.String("file", filepath.Base(src)))
			url, err := store.Upload(gctx, src, ArtifactKey(project, runID, src), info.MimeType)
			if err != nil {
				return err
			}
			uploads[i] = upload{src: src, url: url, info: info}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uploads, nil
}
