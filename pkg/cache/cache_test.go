package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "nb"); hit {
		t.Error("Get() on empty cache hit")
	}
	if err := c.Set(ctx, "nb", []byte(`{"cells":[]}`), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "nb")
	if err != nil || !hit || string(data) != `{"cells":[]}` {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "nb"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "nb"); hit {
		t.Error("Get() after Delete hit")
	}
	if err := c.Delete(ctx, "nb"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	_ = c.Set(ctx, "old", []byte("x"), time.Nanosecond)
	_ = c.Set(ctx, "forever", []byte("y"), 0)
	time.Sleep(time.Millisecond)

	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry hit")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("bad")
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	_ = os.WriteFile(path, []byte("{"), 0644)

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want a silent miss", hit, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClearAndPrune(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), time.Nanosecond)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)
	time.Sleep(time.Millisecond)

	n, err := c.Prune()
	if err != nil || n != 1 {
		t.Errorf("Prune() = %d, %v; want 1", n, err)
	}
	n, err = c.Clear()
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v; want 2", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	nk := k.NotebookKey("abc", NotebookKeyOpts{Kinds: []string{"Note"}, Version: "1.0"})
	if !strings.HasPrefix(nk, "notebook:") || len(nk) != len("notebook:")+64 {
		t.Errorf("NotebookKey = %s", nk)
	}
	if nk == k.NotebookKey("abc", NotebookKeyOpts{Kinds: []string{"Note", "Trainer"}, Version: "1.0"}) {
		t.Error("different kinds should produce different keys")
	}
	if nk == k.NotebookKey("abc", NotebookKeyOpts{Kinds: []string{"Note"}, Version: "1.1"}) {
		t.Error("different versions should produce different keys")
	}
	if nk == k.NotebookKey("abc", NotebookKeyOpts{Kinds: []string{"Note"}, Bindings: map[string]string{"Note": "vision@1#2"}, Version: "1.0"}) {
		t.Error("different bindings should produce different keys")
	}
	if nk != k.NotebookKey("abc", NotebookKeyOpts{Kinds: []string{"Note"}, Version: "1.0"}) {
		t.Error("NotebookKey should be deterministic")
	}

	g1 := k.GraphKey("abc", GraphKeyOpts{Format: "svg"})
	g2 := k.GraphKey("abc", GraphKeyOpts{Format: "svg", Detailed: true})
	if g1 == g2 || !strings.HasPrefix(g1, "graph:") {
		t.Errorf("GraphKey = %s, %s", g1, g2)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	opts := NotebookKeyOpts{Version: "1"}
	if got, want := scoped.NotebookKey("h", opts), "user:123:"+inner.NotebookKey("h", opts); got != want {
		t.Errorf("NotebookKey = %s, want %s", got, want)
	}
	if got := scoped.GraphKey("h", GraphKeyOpts{}); !strings.HasPrefix(got, "user:123:graph:") {
		t.Errorf("GraphKey = %s", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.GraphKey("h", GraphKeyOpts{}); got != "p:"+inner.GraphKey("h", GraphKeyOpts{}) {
		t.Errorf("nil inner GraphKey = %s", got)
	}
}

func TestNewRedisCacheErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := NewRedisCache(ctx, RedisConfig{URL: "http://nope"}); err == nil {
		t.Error("NewRedisCache(bad url) error = nil")
	}
	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache(unreachable) error = %v, want ErrUnavailable", err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) || !errors.Is(err, ErrUnavailable) {
		t.Error("Retryable should wrap the error")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = 100 * time.Millisecond })

	errFatal := errors.New("fatal")
	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"not retryable", 5, errFatal, 1, errFatal},
		{"recovers", 1, Retryable(ErrUnavailable), 2, nil},
		{"gives up", 5, Retryable(ErrUnavailable), 3, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
