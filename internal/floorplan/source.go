// Package floorplan loads floor-plan bitmaps from URLs, data-URLs and
// local files, and reports their natural size.
package floorplan

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxImageBytes bounds remote downloads.
const maxImageBytes = 64 << 20

var (
	ErrNoSource     = errors.New("no floor plan source")
	ErrBadDataURL   = errors.New("malformed data URL")
	ErrNotImage     = errors.New("content is not an image")
	ErrImageTooBig  = errors.New("image exceeds size limit")
	ErrHTTPResponse = errors.New("unexpected HTTP response")
)

// Kind classifies a source string for logging without echoing data-URL payloads.
func Kind(src string) string {
	switch {
	case src == "":
		return "none"
	case strings.HasPrefix(src, "data:"):
		return "data-url"
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return "http"
	default:
		return "file"
	}
}

// ParseDataURL splits a data URL into its media type and decoded payload.
func ParseDataURL(s string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta = m
		isBase64 = true
	}
	mime = meta
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
		}
		return mime, data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return mime, []byte(text), nil
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImageDataURL sniffs data and returns it as an image data URL. Content
// that is not an image is rejected with ErrNotImage.
func ImageDataURL(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		// TIFF is not sniffed by DetectContentType.
		_, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return "", ErrNotImage
		}
		mime = "image/" + format
	}
	return EncodeDataURL(mime, data), nil
}

// Fetch returns the raw bytes behind a source string.
func Fetch(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	switch Kind(src) {
	case "none":
		return nil, ErrNoSource
	case "data-url":
		_, data, err := ParseDataURL(src)
		return data, err
	case "http":
		return fetchHTTP(ctx, client, src)
	}

	path := strings.TrimPrefix(src, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return data, nil
}

func fetchHTTP(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrHTTPResponse, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, ErrImageTooBig
	}
	return data, nil
}

// Decode fetches and decodes a source into an image.
func Decode(ctx context.Context, client *http.Client, src string) (image.Image, error) {
	data, err := Fetch(ctx, client, src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
