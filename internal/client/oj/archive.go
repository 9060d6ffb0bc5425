package oj

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	appErr "ojclient/pkg/errors"

	"github.com/klauspost/compress/zip"
)

// ZipDir packs the regular files under dir into a deflated zip archive, with
// slash separated paths relative to dir.
func ZipDir(dir string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.ToSlash(rel), Method: zip.Deflate})
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return nil, appErr.Wrapf(err, appErr.ProblemArchiveFailed, "zip %s failed: %v", dir, err)
	}
	if err := zw.Close(); err != nil {
		return nil, appErr.Wrapf(err, appErr.ProblemArchiveFailed, "zip %s failed: %v", dir, err)
	}
	return buf.Bytes(), nil
}

// UploadFullDataDir zips a problem directory and uploads it.
func (c *Client) UploadFullDataDir(ctx context.Context, id uint64, dir string) (uint64, error) {
	archive, err := ZipDir(dir)
	if err != nil {
		return 0, err
	}
	return c.UploadFullData(ctx, id, archive)
}
