package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dirURLs struct{ base string }

func (d dirURLs) AssetURL(ref params.AssetRef) (string, error) {
	if ref.ID == "" {
		return "", common.ErrAssetResolution
	}
	return d.base + "/" + ref.ID, nil
}

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodePNG(t, w, h, c), 0o644))
	return path
}

func TestLoadURLFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "1.png", 4, 2, color.RGBA{R: 255, A: 255})

	r := NewResolver(dirURLs{base: dir})
	for _, loc := range []string{path, "file://" + path} {
		tex, err := r.LoadURL(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, uint32(4), tex.Width)
		assert.Equal(t, uint32(2), tex.Height)
		assert.Len(t, tex.Pixels, 4*2*4)
		assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels[:4])
		assert.Equal(t, loc, tex.Source)
		assert.True(t, tex.Valid())
	}
}

func TestLoadURLFromHTTP(t *testing.T) {
	body := encodePNG(t, 2, 2, color.RGBA{G: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/assets/2.png" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	r := NewResolver(dirURLs{base: srv.URL + "/assets"}, WithHTTPClient(srv.Client()))
	tex, err := r.LoadURL(context.Background(), srv.URL+"/assets/2.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255, 0, 255}, tex.Pixels[:4])

	_, err = r.LoadURL(context.Background(), srv.URL+"/assets/missing.png")
	assert.ErrorIs(t, err, common.ErrAssetResolution)
}

func TestLoadURLRejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image at all"), 0o644))

	r := NewResolver(dirURLs{base: dir})
	_, err := r.LoadURL(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrAssetResolution)

	_, err = r.LoadURL(context.Background(), filepath.Join(dir, "absent.png"))
	assert.ErrorIs(t, err, common.ErrAssetResolution)
}

func TestLoadURLRespectsMaxBytes(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "big.png", 64, 64, color.RGBA{B: 200, A: 255})

	r := NewResolver(dirURLs{base: dir}, WithMaxBytes(16))
	_, err := r.LoadURL(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrAssetResolution)
}

func TestDecodeDownscales(t *testing.T) {
	data := encodePNG(t, 40, 10, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	tex, err := decode(data, 20)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), tex.Width)
	assert.Equal(t, uint32(5), tex.Height)
	assert.Len(t, tex.Pixels, 20*5*4)

	tex, err = decode(data, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(40), tex.Width)
}

func TestResolveRejectsOtherAssetTypes(t *testing.T) {
	r := NewResolver(dirURLs{base: "/tmp"})
	_, err := r.Resolve(params.AssetRef{Type: "video", ID: "a.mp4"})
	assert.ErrorIs(t, err, common.ErrAssetResolution)

	loc, err := r.Resolve(params.AssetRef{Type: params.AssetTypeImage, ID: "1.png"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/1.png", loc)
}

func TestLoadPostsResult(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "1.png", 3, 3, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	var posted int
	var mu sync.Mutex
	post := func(f func()) {
		mu.Lock()
		posted++
		mu.Unlock()
		f()
	}
	r := NewResolver(dirURLs{base: dir}, WithPoster(post), WithWorkers(1))

	type result struct {
		tex *common.TextureStagingData
		err error
	}
	results := make(chan result, 1)
	r.Load(context.Background(), params.AssetRef{Type: params.AssetTypeImage, ID: "1.png"},
		func(tex *common.TextureStagingData, err error) { results <- result{tex, err} })

	select {
	case res := <-results:
		require.NoError(t, res.err)
		assert.Equal(t, uint32(3), res.tex.Width)
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
	}
	mu.Lock()
	assert.Equal(t, 1, posted)
	mu.Unlock()
}

func TestLoadFailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	var bufMu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &bufMu, w: &buf}, nil))
	r := NewResolver(dirURLs{base: t.TempDir()}, WithLogger(logger))

	for i := 0; i < 3; i++ {
		done := make(chan error, 1)
		r.Load(context.Background(), params.AssetRef{Type: params.AssetTypeImage, ID: "missing.png"},
			func(_ *common.TextureStagingData, err error) { done <- err })
		select {
		case err := <-done:
			assert.ErrorIs(t, err, common.ErrAssetResolution)
		case <-time.After(5 * time.Second):
			t.Fatal("load did not complete")
		}
	}

	bufMu.Lock()
	defer bufMu.Unlock()
	assert.Equal(t, 1, strings.Count(buf.String(), "asset load failed"))
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
