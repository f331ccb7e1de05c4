// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ArchiveName returns the default archive file name for a run at now.
func ArchiveName(now time.Time) string {
	return "obsidian_notes_" + now.UTC().Format(TimestampFormat) + ".zip"
}

// Archive writes every regular file under outDir into a deflated ZIP at
// zipPath and returns the number of files added. Entry names are rooted at
// the base name of outDir, so notes/2024/03/x.md is stored under that name.
// zipPath may lie inside outDir; the archive never includes itself.
func Archive(outDir, zipPath string) (int, error) {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", outDir, err)
	}
	absZip, err := filepath.Abs(zipPath)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", zipPath, err)
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", zipPath, err)
	}

	zw := zip.NewWriter(f)
	parent := filepath.Dir(absOut)
	count := 0
	walkErr := filepath.WalkDir(absOut, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || path == absZip {
			return nil
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		count++
		return nil
	})

	closeErr := zw.Close()
	if err := f.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	if walkErr != nil {
		os.Remove(zipPath)
		return 0, fmt.Errorf("archiving %s: %w", outDir, walkErr)
	}
	if closeErr != nil {
		os.Remove(zipPath)
		return 0, fmt.Errorf("finishing %s: %w", zipPath, closeErr)
	}
	return count, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(w, src)
	return err
}
