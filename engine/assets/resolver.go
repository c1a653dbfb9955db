// Package assets resolves timeline asset references to decoded textures.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// supportedSubtypes are the image MIME subtypes the resolver decodes.
var supportedSubtypes = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// URLResolver maps an asset reference to a location. timeline.Project satisfies it.
type URLResolver interface {
	AssetURL(ref params.AssetRef) (string, error)
}

type resolverImpl struct {
	mu         *sync.Mutex
	urls       URLResolver
	pool       worker.DynamicWorkerPool
	workers    int
	client     *http.Client
	logger     *slog.Logger
	post       func(func())
	maxBytes   int64
	maxDim     int
	failed     map[string]bool
	nextTaskID int
}

// Resolver loads image assets off the render loop and hands decoded RGBA textures back.
type Resolver interface {
	// Resolve maps a reference to its location without loading it.
	//
	// Parameters:
	//   - ref: the asset reference
	//
	// Returns:
	//   - string: the location (path, file:// or http(s):// URL)
	//   - error: an error wrapping common.ErrAssetResolution
	Resolve(ref params.AssetRef) (string, error)

	// Load fetches and decodes the referenced image on the worker pool and calls done with
	// the result through the configured poster (see WithPoster). Failures are logged once
	// per location.
	//
	// Parameters:
	//   - ctx: bounds the fetch
	//   - ref: the asset reference
	//   - done: receives the texture or an error wrapping common.ErrAssetResolution
	Load(ctx context.Context, ref params.AssetRef, done func(*common.TextureStagingData, error))

	// LoadURL fetches and decodes the image at location synchronously.
	//
	// Parameters:
	//   - ctx: bounds the fetch
	//   - location: the asset location
	//
	// Returns:
	//   - *common.TextureStagingData: the decoded RGBA texture
	//   - error: an error wrapping common.ErrAssetResolution
	LoadURL(ctx context.Context, location string) (*common.TextureStagingData, error)
}

var _ Resolver = &resolverImpl{}

// NewResolver creates a Resolver backed by a dynamic worker pool.
//
// Parameters:
//   - urls: maps references to locations, typically the timeline project
//   - options: variadic list of ResolverBuilderOption functions to configure the resolver
//
// Returns:
//   - Resolver: the new resolver
func NewResolver(urls URLResolver, options ...ResolverBuilderOption) Resolver {
	if urls == nil {
		panic("assets: NewResolver requires a non-nil URLResolver")
	}
	r := &resolverImpl{
		mu:       &sync.Mutex{},
		urls:     urls,
		workers:  2,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
		post:     func(f func()) { f() },
		maxBytes: 64 << 20,
		maxDim:   4096,
		failed:   make(map[string]bool),
	}
	for _, opt := range options {
		opt(r)
	}
	r.pool = worker.NewDynamicWorkerPool(r.workers, 64, 5*time.Second)
	return r
}

func (r *resolverImpl) Resolve(ref params.AssetRef) (string, error) {
	if ref.Type != "" && ref.Type != params.AssetTypeImage {
		return "", fmt.Errorf("%w: unsupported asset type %q", common.ErrAssetResolution, ref.Type)
	}
	return r.urls.AssetURL(ref)
}

func (r *resolverImpl) Load(ctx context.Context, ref params.AssetRef, done func(*common.TextureStagingData, error)) {
	location, err := r.Resolve(ref)
	if err != nil {
		r.report(ref.ID, err)
		r.post(func() { done(nil, err) })
		return
	}

	r.mu.Lock()
	id := r.nextTaskID
	r.nextTaskID++
	r.mu.Unlock()

	r.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			tex, err := r.LoadURL(ctx, location)
			if err != nil {
				r.report(location, err)
			}
			r.post(func() { done(tex, err) })
			return tex, err
		},
	})
}

func (r *resolverImpl) LoadURL(ctx context.Context, location string) (*common.TextureStagingData, error) {
	data, err := r.fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrAssetResolution, location, err)
	}
	tex, err := decode(data, r.maxDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrAssetResolution, location, err)
	}
	tex.Source = location
	return tex, nil
}

// report logs err the first time a location fails.
func (r *resolverImpl) report(location string, err error) {
	r.mu.Lock()
	seen := r.failed[location]
	r.failed[location] = true
	r.mu.Unlock()
	if !seen {
		r.logger.Warn("asset load failed", "asset", location, "error", err)
	}
}

func (r *resolverImpl) fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return readLimited(resp.Body, r.maxBytes)
	default:
		path := strings.TrimPrefix(location, "file://")
		path, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readLimited(f, r.maxBytes)
	}
}

func readLimited(rd io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("asset exceeds %d bytes", limit)
	}
	return data, nil
}

// decode sniffs the content type, decodes the image and converts it to tightly packed RGBA.
// Images larger than maxDim on either side are downscaled to fit.
func decode(data []byte, maxDim int) (*common.TextureStagingData, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, err
	}
	if kind == filetype.Unknown || !supportedSubtypes[kind.MIME.Subtype] {
		return nil, errors.New("unsupported image format")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind.MIME.Value, err)
	}

	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("image has no pixels")
	}
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(h*maxDim/w, 1)
			w = maxDim
		} else {
			w = max(w*maxDim/h, 1)
			h = maxDim
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	}
	return &common.TextureStagingData{
		Pixels: dst.Pix,
		Width:  uint32(w),
		Height: uint32(h),
	}, nil
}
