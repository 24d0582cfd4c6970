// Package upload holds the user's two file selections (the main document and the
// comparison folder) and decides when a check may be started.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"plagcheck/internal/model"
)

// File is a selected file. Open is called once per request that sends it.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromPath builds a File backed by a file on disk.
func FromPath(path string) (File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if st.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: st.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FromBytes builds an in-memory File.
func FromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ExpandFolder returns the regular files directly inside dir, sorted by name.
// A path that is a file is returned on its own.
func ExpandFolder(dir string) ([]File, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		f, err := FromPath(dir)
		if err != nil {
			return nil, err
		}
		return []File{f}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for _, n := range names {
		f, err := FromPath(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Details renders one file the way the upload boxes list it.
func Details(f File) string {
	var suffix string
	if model.IsImageOrPDF(f.Name) {
		suffix = " (Image/PDF)"
	}
	return fmt.Sprintf("%s%s\n%.2f KB", f.Name, suffix, float64(f.Size)/1024)
}

// FolderDetails renders the folder box: a count line followed by every file.
func FolderDetails(files []File) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d files selected", len(files))
	for _, f := range files {
		b.WriteString("\n")
		b.WriteString(Details(f))
	}
	return b.String()
}
