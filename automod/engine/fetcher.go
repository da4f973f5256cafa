package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/veil-social/veil/util"
)

const defaultMaxImageBytes = 10 << 20

// HTTPImageFetcher downloads a photo ref over HTTP and returns it as a
// base64 data URL, the inline form the classification backend accepts.
type HTTPImageFetcher struct {
	Client *http.Client
	// MaxBytes bounds how much image data is read.
	MaxBytes int64
}

func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{
		Client:   util.RobustHTTPClient(),
		MaxBytes: defaultMaxImageBytes,
	}
}

func (f *HTTPImageFetcher) FetchImage(ctx context.Context, ref string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", err
	}

	res, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image fetch failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return "", fmt.Errorf("image fetch failed statusCode=%d", res.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, f.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}

	mime := res.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(raw)
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw)), nil
}
