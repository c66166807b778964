// Package storage talks to the remote object store that holds user-uploaded
// media (avatars, poll option images). Objects live in buckets and are served
// back through stable public URLs.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CROWNARC/animex-tweet-verse/internal/models"

	"resty.dev/v3"
)

// BlobStore uploads and removes media objects.
type BlobStore interface {
	Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket, objectPath string) error
	PublicURL(bucket, objectPath string) string
	ObjectPathFromURL(bucket, publicURL string) string
}

type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient builds a blob store client against the given storage endpoint.
// The API key is attached to every request.
func NewClient(baseURL, apiKey string) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	})
	client.SetBaseURL(baseURL)
	client.SetAuthToken(apiKey)

	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

// Upload writes an object and returns its public URL. An existing object at
// the same path is overwritten.
func (c *Client) Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error) {
	res, err := c.r(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/object/%s/%s", bucket, objectPath))
	if err != nil {
		return "", models.NewRemoteFailureError("upload object", err)
	}
	if res.IsError() {
		return "", models.NewRemoteFailureError("upload object",
			fmt.Errorf("storage returned %d: %s", res.StatusCode(), res.String()))
	}

	return c.PublicURL(bucket, objectPath), nil
}

// Remove deletes an object. Removing an absent object is not an error.
func (c *Client) Remove(ctx context.Context, bucket, objectPath string) error {
	res, err := c.r(ctx).
		Delete(fmt.Sprintf("/object/%s/%s", bucket, objectPath))
	if err != nil {
		return models.NewRemoteFailureError("remove object", err)
	}
	if res.IsError() && res.StatusCode() != 404 {
		return models.NewRemoteFailureError("remove object",
			fmt.Errorf("storage returned %d: %s", res.StatusCode(), res.String()))
	}
	return nil
}

// PublicURL returns the stable read URL for an object.
func (c *Client) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, bucket, objectPath)
}

// ObjectPathFromURL extracts the bucket-relative path from a public URL
// produced by PublicURL, or "" when the URL belongs to another bucket or host.
func (c *Client) ObjectPathFromURL(bucket, publicURL string) string {
	prefix := fmt.Sprintf("%s/object/public/%s/", c.baseURL, bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(publicURL, prefix)
}
