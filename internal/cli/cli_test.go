package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plagcheck/internal/client"
	"plagcheck/internal/model"
)

type fakeServer struct {
	*httptest.Server
	hits    atomic.Int32
	folders atomic.Int32
}

func newFakeServer(t *testing.T, status int, body any) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			fs.folders.Store(int32(len(r.MultipartForm.File[client.FolderField])))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("PLAGCHECK_ENDPOINT", "")
	t.Setenv("PLAGCHECK_FORMAT", "")
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCheck_TextOutput(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, model.CheckResponse{Files: []model.FileResult{
		{FileName: "low.txt", PlagiarismPercentage: model.Percent(10)},
		{FileName: "high.pdf", PlagiarismPercentage: model.Percent(80), Matches: []string{"The cat sat."}},
		{FileName: "mid.txt", PlagiarismPercentage: model.Percent(30)},
	}})

	dir := t.TempDir()
	folder := filepath.Join(dir, "folder")
	require.NoError(t, os.Mkdir(folder, 0o755))
	writeFiles(t, dir, map[string]string{"essay.txt": "The cat sat."})
	writeFiles(t, folder, map[string]string{"a.txt": "x", "b.pdf": "y"})

	stdout, stderr, err := run(t, "check", "--endpoint", srv.URL, "--doc", filepath.Join(dir, "essay.txt"), "--folder", folder)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Average: 40.0% [medium]")
	assert.Contains(t, stdout, "high.pdf (Image/PDF - OCR Processed)  80.0% [high]")
	assert.Less(t, bytes.Index([]byte(stdout), []byte("high.pdf")), bytes.Index([]byte(stdout), []byte("mid.txt")))
	assert.Less(t, bytes.Index([]byte(stdout), []byte("mid.txt")), bytes.Index([]byte(stdout), []byte("low.txt")))

	assert.Contains(t, stderr, "[main]\nessay.txt\n0.01 KB")
	assert.Contains(t, stderr, "[folder]\n2 files selected")
	assert.Contains(t, stderr, "b.pdf (Image/PDF)")
	assert.EqualValues(t, 1, srv.hits.Load())
	assert.EqualValues(t, 2, srv.folders.Load())
}

func TestCheck_DroppedFilesReplaceFolder(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, []model.FileResult{{FileName: "c.txt", PlagiarismPercentage: model.Percent(0)}})

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"essay.txt": "e", "a.txt": "a", "b.txt": "b", "c.txt": "c"})

	_, _, err := run(t, "check", "--endpoint", srv.URL,
		"--doc", filepath.Join(dir, "essay.txt"),
		"--folder", filepath.Join(dir, "a.txt"), "--folder", filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.txt"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, srv.folders.Load())
}

func TestCheck_JSONOutputToFile(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, model.CheckResponse{Files: []model.FileResult{
		{FileName: "scan.png", Error: "image text recognition (OCR) is not available"},
	}})

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"essay.txt": "e", "scan.png": "p"})
	outPath := filepath.Join(dir, "out.json")

	stdout, _, err := run(t, "check", "--endpoint", srv.URL, "--format", "json", "-o", outPath,
		"-d", filepath.Join(dir, "essay.txt"), "-f", filepath.Join(dir, "scan.png"))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var got model.CheckResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Files, 1)
	assert.Equal(t, "scan.png", got.Files[0].FileName)
	assert.False(t, got.Files[0].HasPercentage())
}

func TestCheck_HTMLOutput(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, model.CheckResponse{Files: []model.FileResult{}})

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"essay.txt": "e", "a.txt": "a"})

	stdout, _, err := run(t, "check", "--endpoint", srv.URL, "--format", "html",
		"-d", filepath.Join(dir, "essay.txt"), filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "<p>No results found.</p>")
}

func TestCheck_MissingMainDocumentMakesNoRequest(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, model.CheckResponse{})

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})

	_, stderr, err := run(t, "check", "--endpoint", srv.URL, "--folder", dir)
	assert.ErrorIs(t, err, client.ErrMainDocumentRequired)
	assert.NotContains(t, stderr, "Checking...")
	assert.EqualValues(t, 0, srv.hits.Load())
}

func TestCheck_EmptyFolder(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, model.CheckResponse{})

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"essay.txt": "e"})
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))

	_, _, err := run(t, "check", "--endpoint", srv.URL, "-d", filepath.Join(dir, "essay.txt"), "-f", empty)
	assert.ErrorIs(t, err, ErrNothingToCheck)
	assert.EqualValues(t, 0, srv.hits.Load())
}

func TestCheck_ServerError(t *testing.T) {
	srv := newFakeServer(t, http.StatusInternalServerError, map[string]string{"error": "boom"})

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"essay.txt": "e", "a.txt": "a"})

	_, _, err := run(t, "check", "--endpoint", srv.URL, "-d", filepath.Join(dir, "essay.txt"), filepath.Join(dir, "a.txt"))
	require.Error(t, err)
	assert.EqualError(t, err, "server returned 500 - Internal Server Error")
}

func TestCheck_ConfigFile(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, model.CheckResponse{Files: []model.FileResult{
		{FileName: "a.txt", PlagiarismPercentage: model.Percent(55)},
	}})

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"essay.txt":      "e",
		"a.txt":          "a",
		"plagcheck.yaml": "endpoint: " + srv.URL + "\nformat: json\n",
	})

	stdout, _, err := run(t, "check", "--config", filepath.Join(dir, "plagcheck.yaml"),
		"-d", filepath.Join(dir, "essay.txt"), filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Contains(t, stdout, `"plagiarism_percentage": 55`)
}

func TestCheck_InvalidFormat(t *testing.T) {
	_, _, err := run(t, "check", "--format", "xml", "-d", "whatever")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}
