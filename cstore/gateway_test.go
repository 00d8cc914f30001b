package cstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v0/add", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "deed.pdf", header.Filename)

		w.Write([]byte(`{"Name":"deed.pdf","Hash":"QmDeed","Size":"18"}`))
	}))
	defer server.Close()

	g := New(server.URL, "secret", nil, time.Second)

	hash, err := g.Upload(context.Background(), "deed.pdf", []byte("scanned title deed"))
	require.NoError(t, err)
	assert.Equal(t, "QmDeed", hash)
}

func TestUploadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	g := New(server.URL, "secret", nil, time.Second)

	_, err := g.Upload(context.Background(), "deed.pdf", []byte("data"))
	assert.Error(t, err)
}

func TestUploadMissingHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	g := New(server.URL, "secret", nil, time.Second)

	_, err := g.Upload(context.Background(), "deed.pdf", []byte("data"))
	assert.Error(t, err)
}

func TestFetchFirstMirrorWins(t *testing.T) {
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/QmBlob", r.URL.Path)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Write([]byte("blob content"))
	}))
	defer mirror.Close()

	g := New("", "", []string{mirror.URL}, time.Second)

	data, err := g.Fetch(context.Background(), "QmBlob")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob content"), data)
}

func TestFetchFallsBackInOrder(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway busy", http.StatusBadGateway)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("blob content"))
	}))
	defer healthy.Close()

	g := New("", "", []string{broken.URL, healthy.URL}, time.Second)

	data, err := g.Fetch(context.Background(), "QmBlob")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob content"), data)
}

func TestFetchTimesOutPerAttempt(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer slow.Close()

	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("blob content"))
	}))
	defer fast.Close()

	g := New("", "", []string{slow.URL, fast.URL}, 20*time.Millisecond)

	data, err := g.Fetch(context.Background(), "QmBlob")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob content"), data)
}

func TestFetchExhaustsMirrors(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer broken.Close()

	g := New("", "", []string{broken.URL, broken.URL}, time.Second)

	_, err := g.Fetch(context.Background(), "QmMissing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchEmptyHash(t *testing.T) {
	g := New("", "", nil, time.Second)

	_, err := g.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchHonorsCallerCancellation(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer blocked.Close()

	g := New("", "", []string{blocked.URL, blocked.URL}, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Fetch(ctx, "QmBlob")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
