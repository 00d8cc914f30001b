// Package cstore talks to the content-addressed store: blobs go up through
// the provider's upload API and come back down through an ordered list of
// public gateway mirrors.
package cstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Fetch after every mirror has failed or timed
// out. Callers are expected to degrade, not abort.
var ErrNotFound = errors.New("content not found on any mirror")

type Gateway struct {
	client   *http.Client
	endpoint string
	apiKey   string
	mirrors  []string
	timeout  time.Duration
	log      *logrus.Entry
}

// New builds a gateway. endpoint is the upload API base URL, mirrors the
// ordered fetch bases tried as {mirror}/{hash}, timeout the per-attempt
// bound on a single mirror read.
func New(endpoint, apiKey string, mirrors []string, timeout time.Duration) *Gateway {
	return &Gateway{
		client:   &http.Client{},
		endpoint: endpoint,
		apiKey:   apiKey,
		mirrors:  mirrors,
		timeout:  timeout,
		log:      logrus.WithField("pkg", "cstore"),
	}
}

type uploadResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Upload pushes a blob to the store and returns its content hash. Any
// transport error or non-2xx response fails the upload as a whole; there is
// no partial-success state.
func (g *Gateway) Upload(ctx context.Context, name string, content []byte) (string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.endpoint+"/api/v0/add", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	var reply uploadResponse
	if err := g.submitRequest(req, &reply); err != nil {
		return "", err
	}
	if reply.Hash == "" {
		return "", errors.New("upload response carries no content hash")
	}
	return reply.Hash, nil
}

func (g *Gateway) submitRequest(req *http.Request, reply interface{}) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("unexpected response [%d]: %s", resp.StatusCode, string(data))
	}
	if reply != nil {
		if err := json.Unmarshal(data, reply); err != nil {
			return fmt.Errorf("unexpected response: %s", string(data))
		}
	}
	return nil
}

// Fetch reads a blob back by content hash, trying each mirror in order with
// a bounded attempt and an explicit no-cache directive. The first 2xx
// response wins; exhausting the list yields ErrNotFound.
func (g *Gateway) Fetch(ctx context.Context, hash string) ([]byte, error) {
	if hash == "" {
		return nil, ErrNotFound
	}

	for _, mirror := range g.mirrors {
		data, err := g.fetchFrom(ctx, mirror, hash)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.log.Warnf("fetch %s from %s: %v", hash, mirror, err)
	}
	return nil, ErrNotFound
}

func (g *Gateway) fetchFrom(ctx context.Context, mirror, hash string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, "GET", fmt.Sprintf("%s/%s", mirror, hash), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return data, nil
}
