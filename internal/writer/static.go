package writer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyStatic copies the contents of src into the output root, preserving the
// directory structure and file modes. Copied files claim their output paths,
// so a page rendering to the same location fails with ErrOutputCollision.
// A missing src is skipped. It returns the number of files copied.
func (w *Writer) CopyStatic(ctx context.Context, src string) (int, error) {
	if src == "" {
		return 0, nil
	}
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		w.log.Debug("static directory not found, skipping copy", "dir", src)
		return 0, nil
	}

	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &WriteError{Path: path, Output: w.root, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(w.root, relPath)

		if d.IsDir() {
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return &WriteError{Path: path, Output: dstPath, Err: err}
			}
			return nil
		}
		if err := w.Claim(filepath.ToSlash(relPath), path); err != nil {
			return err
		}
		if err := w.copyFile(path, dstPath); err != nil {
			return &WriteError{Path: path, Output: dstPath, Err: err}
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, err
	}

	w.log.Info("static assets copied", "dir", src, "files", copied)
	return copied, nil
}

// copyFile copies a single file from srcFile to dstFile.
func (w *Writer) copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dstF, srcF); err != nil {
		dstF.Close()
		return fmt.Errorf("failed to copy data: %w", err)
	}
	if err := dstF.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	if srcInfo, err := srcF.Stat(); err == nil {
		if err := os.Chmod(dstFile, srcInfo.Mode()); err != nil {
			w.log.Warn("could not preserve permissions", "file", dstFile, "error", err)
		}
	}
	return nil
}
