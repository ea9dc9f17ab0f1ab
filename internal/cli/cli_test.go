package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/lineart-prep/internal/storage"
	"github.com/anime-shed/lineart-prep/pkg/models"
)

func writeImage(t *testing.T, path string, img image.Image) string {
	t.Helper()
	require.NoError(t, storage.NewLocalStore().PutImage(context.Background(), path, img))
	return path
}

func sketch(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 230
	}
	for x := 1; x < w-1; x++ {
		img.SetGray(x, h/2, color.Gray{Y: 20})
	}
	return img
}

func photo(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 140, 200, 255
	}
	return img
}

func run(t *testing.T, args ...string) (models.BatchResponse, string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())

	var resp models.BatchResponse
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	}
	return resp, out.String(), err
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, filepath.Join(dir, "page.png"), sketch(24, 16))
	outDir := filepath.Join(dir, "out")

	resp, _, err := run(t, "process", "--workers", "2", "--max-width", "24", "--max-height", "24", "--out-dir", outDir, in)
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 0, resp.Failed)
	assert.Equal(t, filepath.Join(outDir, "output_closing", "page.png"), resp.Results[0].OutputRef)
	_, statErr := os.Stat(resp.Results[0].OutputRef)
	assert.NoError(t, statErr)
}

func TestProcessCommand_ModeFlags(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, filepath.Join(dir, "page.png"), sketch(24, 16))

	resp, _, err := run(t, "process", "--mode", "thinning", "--se-size", "3", "--iterations", "2",
		"--max-width", "24", "--max-height", "24", in)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "thinning", resp.Results[0].Mode)
	assert.Equal(t, filepath.Join(dir, "output_thinning", "page.png"), resp.Results[0].OutputRef)
}

func TestProcessCommand_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeImage(t, filepath.Join(dir, "good.png"), sketch(24, 16))
	missing := filepath.Join(dir, "missing.png")

	resp, _, err := run(t, "process", "--max-width", "24", "--max-height", "24", good, missing)
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 2 job(s) failed")

	require.Len(t, resp.Results, 2)
	assert.Equal(t, good, resp.Results[0].InputRef)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, missing, resp.Results[1].InputRef)
	assert.NotEmpty(t, resp.Results[1].Error)
}

func TestProcessCommand_StageDumps(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, filepath.Join(dir, "page.png"), sketch(24, 16))
	debugDir := filepath.Join(dir, "stages")

	resp, _, err := run(t, "process", "--max-width", "24", "--max-height", "24",
		"--display", "1", "--debug-dir", debugDir, in)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	matches, err := filepath.Glob(filepath.Join(debugDir, resp.Results[0].ID, "*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestProcessCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no images", args: []string{"process"}, wantErr: "requires at least 1 arg(s)"},
		{name: "unknown mode", args: []string{"process", "--mode", "blur", "x.png"}, wantErr: "unsupported line-weight mode"},
		{name: "zero workers", args: []string{"--workers", "0", "process", "x.png"}, wantErr: "WORKERS must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, out)
		})
	}
}

func TestEmbedCommand_Grid(t *testing.T) {
	dir := t.TempDir()
	rabbit := writeImage(t, filepath.Join(dir, "rabbit.png"), sketch(16, 8))
	bear := writeImage(t, filepath.Join(dir, "bear.png"), sketch(8, 16))
	meadow := writeImage(t, filepath.Join(dir, "meadow.png"), photo(40, 40))
	beach := writeImage(t, filepath.Join(dir, "beach.png"), photo(40, 40))

	resp, _, err := run(t, "embed",
		"--background", meadow, "-b", beach,
		"--left", "4", "--top", "4", "--max-width", "16", "--max-height", "16",
		"--subdir", "trial", rabbit, bear)
	require.NoError(t, err)

	var got []string
	for _, r := range resp.Results {
		got = append(got, filepath.Base(r.OutputRef))
		assert.Equal(t, filepath.Join(dir, "output", "trial"), filepath.Dir(r.OutputRef))
	}
	assert.Equal(t, []string{"meadow_rabbit.png", "beach_rabbit.png", "meadow_bear.png", "beach_bear.png"}, got)
	assert.Equal(t, 4, resp.Succeeded)
}

func TestEmbedCommand_RequiresBackground(t *testing.T) {
	_, _, err := run(t, "embed", "rabbit.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "background" not set`)
}

func TestEmbedCommand_PlacementOutOfBounds(t *testing.T) {
	dir := t.TempDir()
	rabbit := writeImage(t, filepath.Join(dir, "rabbit.png"), sketch(16, 8))
	meadow := writeImage(t, filepath.Join(dir, "meadow.png"), photo(20, 20))

	resp, _, err := run(t, "embed", "-b", meadow, "--max-width", "16", "--max-height", "16", rabbit)
	require.Error(t, err)
	require.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Error, "processing")
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	err := printResults(&buf, []models.JobResult{{ID: "a"}, {ID: "b", Error: "boom"}})
	assert.EqualError(t, err, "1 of 2 job(s) failed")

	var resp models.BatchResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)

	buf.Reset()
	assert.NoError(t, printResults(&buf, nil))
}

func TestServe_GracefulShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Handler: mux, ReadTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, server, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_ListenerClosed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = serve(context.Background(), &http.Server{Handler: http.NewServeMux()}, ln)
	assert.Error(t, err)
}
