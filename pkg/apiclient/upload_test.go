package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectProgress(u *Upload) []int {
	var got []int
	for p := range u.Progress() {
		got = append(got, p)
	}
	return got
}

func assertMonotonic(t *testing.T, got []int) {
	t.Helper()
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1], "progress went backwards at %d: %v", i, got)
	}
	for _, p := range got {
		assert.True(t, p >= 0 && p <= 100, "progress out of range: %d", p)
	}
}

func attachmentHandler(t *testing.T, want []byte, calls *atomic.Int32, rejectFirst bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if rejectFirst && n == 1 {
			_, _ = io.Copy(io.Discard, r.Body)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
			return
		}
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		got, err := io.ReadAll(f)
		assert.NoError(t, err)
		assert.Equal(t, "flood.jpg", hdr.Filename)
		assert.Equal(t, want, got)
		assert.Equal(t, "evidence", r.FormValue("label"))
		writeJSON(w, http.StatusOK, envelopeOf(ServiceRequest{ID: 4, Attachments: []string{"/uploads/flood.jpg"}}))
	}
}

func TestUploadProgressIsMonotonicAndEndsAtCompletion(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 32*1024)
	m := newMockAPI(t)
	var calls atomic.Int32
	m.mux.HandleFunc("/api/requests/4/attachments", attachmentHandler(t, content, &calls, false))
	c, _ := signedIn(t, m)
	svc := NewServices(c)

	u := svc.Requests.AttachFile(context.Background(), 4, File{
		Name:    "flood.jpg",
		Content: bytes.NewReader(content),
		Fields:  map[string]string{"label": "evidence"},
	})
	resp, err := u.Wait()
	require.NoError(t, err)

	var req ServiceRequest
	require.NoError(t, resp.Decode(&req))
	assert.Equal(t, []string{"/uploads/flood.jpg"}, req.Attachments)

	got := collectProgress(u)
	assertMonotonic(t, got)
	assert.Equal(t, 0, got[0])
	assert.Equal(t, 100, got[len(got)-1])
	assert.Greater(t, len(got), 2, "intermediate progress is reported")
}

func TestUploadIsReplayedAfterRefresh(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 64*1024)
	m := newMockAPI(t)
	var calls atomic.Int32
	m.mux.HandleFunc("/api/requests/4/attachments", attachmentHandler(t, content, &calls, true))
	c, _ := signedIn(t, m)

	u := c.Upload(context.Background(), "/requests/4/attachments", File{
		Name:    "flood.jpg",
		Content: bytes.NewReader(content),
		Fields:  map[string]string{"label": "evidence"},
	})
	_, err := u.Wait()
	require.NoError(t, err)

	got := collectProgress(u)
	assertMonotonic(t, got)
	assert.Equal(t, 100, got[len(got)-1])
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), m.refreshCalls.Load())
}

func TestUploadOfStreamIsNotReplayed(t *testing.T) {
	content := []byte("not seekable")
	m := newMockAPI(t)
	var calls atomic.Int32
	m.mux.HandleFunc("/api/requests/4/attachments", attachmentHandler(t, content, &calls, true))
	c, s := signedIn(t, m)

	u := c.Upload(context.Background(), "/requests/4/attachments", File{
		Name:    "flood.jpg",
		Content: io.MultiReader(bytes.NewReader(content)),
	})
	_, err := u.Wait()
	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), m.refreshCalls.Load())
	assert.Equal(t, "new", s.AccessToken(), "the session is refreshed for the resubmission")

	got := collectProgress(u)
	assertMonotonic(t, got)
	assert.NotEqual(t, 100, got[len(got)-1])
}
