// Package geo provides the boundary dataset model for borderview: fetching and
// decoding GeoJSON, selecting features and projecting coordinates to the screen.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"
)

// DefaultDatasetURL is the public world country boundaries dataset
const DefaultDatasetURL = "https://raw.githubusercontent.com/datasets/geo-countries/master/data/countries.geojson"

// DefaultNameProperty is the feature property holding the country display name
const DefaultNameProperty = "name"

var (
	// ErrBadStatus is returned when the dataset server answers with a non-2xx status
	ErrBadStatus = errors.New("unexpected response status")
	// ErrDecode is returned when the response body is not a GeoJSON FeatureCollection
	ErrDecode = errors.New("invalid GeoJSON feature collection")
)

// Fetcher retrieves a feature collection from a dataset source
type Fetcher interface {
	Fetch(ctx context.Context) (*geojson.FeatureCollection, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface
type FetcherFunc func(ctx context.Context) (*geojson.FeatureCollection, error)

// Fetch calls f(ctx)
func (f FetcherFunc) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	return f(ctx)
}

// HTTPFetcher issues a single GET for the dataset. There is no retry and no
// client-side timeout; the request lives as long as ctx.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher for the given URL using http.DefaultClient
func NewHTTPFetcher(rawURL string) *HTTPFetcher {
	return &HTTPFetcher{URL: rawURL, Client: http.DefaultClient}
}

// Fetch downloads and decodes the dataset
func (f *HTTPFetcher) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w: %d", f.URL, ErrBadStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return Decode(data)
}

// FileFetcher reads the dataset from a local GeoJSON file
type FileFetcher struct {
	Path string
}

// Fetch reads and decodes the file. ctx is only checked before reading.
func (f *FileFetcher) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(data)
}

// NewFetcher picks a fetcher for a dataset location: http(s) URLs are fetched
// over the network, file:// URLs and plain paths are read from disk.
func NewFetcher(location string) (Fetcher, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("dataset location is empty")
	}

	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return NewHTTPFetcher(location), nil
		case "file":
			return &FileFetcher{Path: filepath.FromSlash(u.Path)}, nil
		}
	}

	path := os.ExpandEnv(location)
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	return &FileFetcher{Path: path}, nil
}

// Decode parses a GeoJSON FeatureCollection. Any other document, including a
// single Feature, a bare geometry or a collection without a features array,
// is rejected with ErrDecode.
func Decode(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type %q", ErrDecode, fc.Type)
	}
	if !gjson.GetBytes(data, "features").IsArray() {
		return nil, fmt.Errorf("%w: missing features array", ErrDecode)
	}
	return fc, nil
}

// Bounds returns the union of the bounds of all feature geometries. ok is false
// when no feature carries a geometry.
func Bounds(features []*geojson.Feature) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if !found {
			b = f.Geometry.Bound()
			found = true
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}
	return b, found
}
