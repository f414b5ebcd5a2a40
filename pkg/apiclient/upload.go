package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
)

// File is a binary payload sent as multipart/form-data.
type File struct {
	// Field is the form field name; defaults to "file".
	Field string
	Name  string
	// Content is streamed, not buffered. A Content that implements io.Seeker
	// can be replayed after a token refresh.
	Content io.Reader
	// Size is used for progress; when zero it is derived from Content if
	// possible, otherwise progress only reports 0 and 100.
	Size int64
	// Fields are extra form values written before the file part.
	Fields map[string]string
}

// Upload is an in-flight file upload. Progress is a side channel; the result
// comes from Wait.
type Upload struct {
	progress chan int
	done     chan struct{}
	resp     *Response
	err      error
}

// Progress returns a finite stream of percentages in [0, 100]. Values never
// decrease, the last value is 100 when the upload succeeded, and the channel
// is closed when the upload ends. Nobody has to read it: it is buffered for
// every possible value so the upload never blocks on it.
func (u *Upload) Progress() <-chan int {
	return u.progress
}

// Wait blocks until the upload ends and returns its result.
func (u *Upload) Wait() (*Response, error) {
	<-u.done
	return u.resp, u.err
}

// Done is closed when the upload ends.
func (u *Upload) Done() <-chan struct{} {
	return u.done
}

// Upload starts a multipart POST of f to path and returns immediately.
func (c *Client) Upload(ctx context.Context, path string, f File, opts ...CallOption) *Upload {
	u := &Upload{
		progress: make(chan int, 101),
		done:     make(chan struct{}),
	}

	field := f.Field
	if field == "" {
		field = "file"
	}
	size := f.Size
	if size <= 0 {
		size = contentSize(f.Content)
	}
	tracker := &progressTracker{ch: u.progress, total: size, last: -1}
	seeker, canSeek := f.Content.(io.Seeker)

	req, err := newRequest(http.MethodPost, path, nil, opts)
	if err != nil {
		tracker.finish(false)
		u.err = err
		close(u.done)
		return u
	}
	req.replayable = canSeek

	var sends int
	req.stream = func() (io.Reader, string, error) {
		if sends > 0 {
			if !canSeek {
				return nil, "", fmt.Errorf("upload content cannot be replayed")
			}
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, "", fmt.Errorf("failed to rewind upload content: %w", err)
			}
			tracker.rewind()
		}
		sends++

		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)
		go func() {
			pw.CloseWithError(writeMultipart(mw, field, f, &countingReader{r: f.Content, t: tracker}))
		}()
		return pr, mw.FormDataContentType(), nil
	}

	go func() {
		defer close(u.done)
		tracker.emit(0)
		resp, err := c.do(ctx, attempt{req: req})
		tracker.finish(err == nil)
		u.resp, u.err = resp, err
	}()

	return u
}

func writeMultipart(mw *multipart.Writer, field string, f File, content io.Reader) error {
	for k, v := range f.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile(field, f.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

func contentSize(r io.Reader) int64 {
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len())
	case io.Seeker:
		cur, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0
		}
		end, err := v.Seek(0, io.SeekEnd)
		if err != nil {
			return 0
		}
		if _, err := v.Seek(cur, io.SeekStart); err != nil {
			return 0
		}
		return end - cur
	}
	return 0
}

// progressTracker turns byte counts into non-decreasing percentages. 100 is
// reserved for a completed upload.
type progressTracker struct {
	mu     sync.Mutex
	ch     chan int
	total  int64
	sent   int64
	last   int
	closed bool
}

func (t *progressTracker) add(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent += int64(n)
	if t.total <= 0 {
		return
	}
	pct := int(t.sent * 100 / t.total)
	if pct > 99 {
		pct = 99
	}
	t.emitLocked(pct)
}

func (t *progressTracker) rewind() {
	t.mu.Lock()
	t.sent = 0
	t.mu.Unlock()
}

func (t *progressTracker) emit(pct int) {
	t.mu.Lock()
	t.emitLocked(pct)
	t.mu.Unlock()
}

func (t *progressTracker) emitLocked(pct int) {
	if t.closed || pct <= t.last {
		return
	}
	t.last = pct
	t.ch <- pct
}

func (t *progressTracker) finish(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if ok {
		t.emitLocked(100)
	}
	t.closed = true
	close(t.ch)
}

type countingReader struct {
	r io.Reader
	t *progressTracker
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.t.add(n)
	}
	return n, err
}
