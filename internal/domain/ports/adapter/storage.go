package adapter

import "context"

// ObjectStore is the port for durable asset storage.
type ObjectStore interface {
	// Upload writes data under path and returns the public URL.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// AssetFetcher downloads a provider output asset. It returns the bytes,
// the response content type and the file extension derived from the URL.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType, ext string, err error)
}
