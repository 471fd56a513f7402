package library

import (
	"context"
	"strings"

	"KPlayer/logger"
)

// Presigner resolves a blob store object path to a fetchable URL.
type Presigner interface {
	PresignedURL(ctx context.Context, objectPath string) (string, error)
}

// Gateway is the client-side view of the remote stores: it turns storage
// references into URLs the browser can load.
type Gateway struct {
	blobs Presigner
}

func NewGateway(blobs Presigner) *Gateway {
	return &Gateway{blobs: blobs}
}

// IsFetchableURL reports whether ref is an http(s) URL that needs no resolution.
func IsFetchableURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ResolveImage returns pathOrURL unchanged when it is already an http(s) URL,
// otherwise a presigned URL for the object it names. Resolution failures are
// logged and the input is returned as is, so callers always get a string.
func (g *Gateway) ResolveImage(ctx context.Context, pathOrURL string) string {
	if pathOrURL == "" || IsFetchableURL(pathOrURL) {
		return pathOrURL
	}

	key := objectPath(pathOrURL)
	if key == "" {
		logger.Warn("storage reference has no object path", logger.String("ref", pathOrURL))
		return pathOrURL
	}

	url, err := g.blobs.PresignedURL(ctx, key)
	if err != nil {
		logger.Warn("failed to resolve storage reference, using it unresolved",
			logger.String("ref", pathOrURL),
			logger.ErrorField(err))
		return pathOrURL
	}
	return url
}

// objectPath strips an s3://<bucket>/ prefix and leading slashes.
func objectPath(ref string) string {
	p := strings.TrimSpace(ref)
	if rest, ok := strings.CutPrefix(p, "s3://"); ok {
		_, p, _ = strings.Cut(rest, "/")
	}
	return strings.TrimLeft(p, "/")
}
