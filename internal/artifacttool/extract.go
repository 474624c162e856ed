package artifacttool

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// extract unpacks an archive into the destination directory, sniffing the
// mime header to pick the format. The archive file is removed after a
// successful pass over its entries.
func extract(archive, destination string) error {
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()
	defer os.Remove(archive)

	header := make([]byte, 512)
	file.Read(header)
	mime := http.DetectContentType(header)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	switch mime {
	case "application/zip":
		info, err := file.Stat()
		if err != nil {
			return err
		}
		return unzip(file, info.Size(), destination)
	case "application/x-gzip":
		return untar(file, destination)
	default:
		return fmt.Errorf("unsupported archive format: %s", mime)
	}
}

// handles .zip files
func unzip(file io.ReaderAt, size int64, destination string) error {
	reader, err := zip.NewReader(file, size)
	if err != nil {
		return fmt.Errorf("failed to create zip reader: %w", err)
	}

	for _, entry := range reader.File {
		target, err := entryPath(destination, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			continue
		}

		contents, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
		}

		err = writeEntry(target, contents)
		contents.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// handles .tar.gz files
func untar(file io.Reader, destination string) error {
	decompressor, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer decompressor.Close()

	reader := tar.NewReader(decompressor)

	for {
		header, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		target, err := entryPath(destination, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, reader); err != nil {
				return err
			}
		}
	}

	return nil
}

// entryPath joins an archive entry name onto the destination, rejecting
// entries that would escape it.
func entryPath(destination, name string) (string, error) {
	target := filepath.Join(destination, filepath.FromSlash(name))

	rel, err := filepath.Rel(destination, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}

	return target, nil
}

func writeEntry(target string, contents io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer out.Close()

	_ = os.Chmod(target, 0o755)

	if _, err := io.Copy(out, contents); err != nil {
		return fmt.Errorf("failed to copy data to file %s: %w", target, err)
	}

	return nil
}
