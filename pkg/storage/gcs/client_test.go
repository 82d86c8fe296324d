package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokenClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	return &Client{
		bucket: "crystal-avatars",
		tokens: &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
			return "token", time.Now().Add(time.Hour), nil
		}},
		httpClient: &http.Client{Transport: rt},
	}
}

func TestUploadSendsMediaRequest(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		if req.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
		}
		if req.Header.Get("Content-Type") != "image/png" {
			t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
		}
		if !strings.Contains(req.URL.RawQuery, "name=avatars%2Fuser_42") {
			t.Fatalf("object name missing from query: %s", req.URL.RawQuery)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("{}")),
			Header:     http.Header{},
		}
	})

	err := client.Upload(context.Background(), "avatars/user_42", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func TestUploadRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(*http.Request) *http.Response {
		t.Fatal("no request expected")
		return nil
	})
	if err := client.Upload(context.Background(), "  ", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		if req.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", req.Method)
		}
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}
	})

	if err := client.Delete(context.Background(), "avatars/user_42"); err != nil {
		t.Fatalf("Delete of missing object should succeed: %v", err)
	}
}

func TestDeleteSurfacesServerError(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(*http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(strings.NewReader("denied")),
			Header:     http.Header{},
		}
	})

	err := client.Delete(context.Background(), "avatars/user_42")
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	client := &Client{bucket: "crystal-avatars"}
	got := client.PublicURL("avatars/user_42")
	want := "https://storage.googleapis.com/crystal-avatars/avatars/user_42"
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}
