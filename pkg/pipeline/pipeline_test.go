package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/davafons/dial/pkg/cache"
	"github.com/davafons/dial/pkg/nodeeditor"
	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/notebook"
	"github.com/davafons/dial/pkg/observability"
	"github.com/davafons/dial/pkg/project"
)

const mnist = `{"name":"mnist","nodes":[
	{"id":"data","kind":"DatasetLoader","params":{"dataset":"MNIST"}},
	{"id":"layers","kind":"LayersEditor","params":{"layers":[{"type":"Flatten"},{"type":"Dense","units":10}]}},
	{"id":"model","kind":"ModelCompiler"},
	{"id":"aug","kind":"Augmenter"}],
	"connections":[
	{"from":"layers","output":"layers","to":"model","input":"layers"},
	{"from":"data","output":"train","to":"aug","input":"in"},
	{"from":"aug","output":"out","to":"model","input":"dataset"}]}`

const loop = `{"name":"loop","nodes":[
	{"id":"a","kind":"Trainer"},
	{"id":"b","kind":"Trainer"}],
	"connections":[
	{"from":"a","output":"trained","to":"b","input":"model"},
	{"from":"b","output":"trained","to":"a","input":"model"}]}`

func decode(t *testing.T, src string) *project.Project {
	t.Helper()
	p, err := project.Decode(strings.NewReader(src), project.JSON, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func builtinRegistry() *notebook.Registry {
	r := notebook.NewRegistry()
	nodes.Install(nil, r, nodes.Builtins()...)
	return r
}

// countingCache counts writes to an inner cache.
type countingCache struct {
	cache.Cache
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, data, ttl)
}

func fileCache(t *testing.T) *countingCache {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &countingCache{Cache: fc}
}

func TestGenerateCaches(t *testing.T) {
	ctx := context.Background()
	c := fileCache(t)
	r := NewRunner(c, nil, builtinRegistry(), nil)

	first, err := r.Generate(ctx, decode(t, mnist), Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if first.CacheHit || first.Cells == 0 || first.Cells != first.Notebook.Len() {
		t.Errorf("first run = hit %v, %d cells", first.CacheHit, first.Cells)
	}
	if !slices.Equal(first.Skipped, []string{"aug"}) {
		t.Errorf("Skipped = %v, want [aug]", first.Skipped)
	}
	if first.Stats.Nodes != 4 || first.Stats.Edges != 3 {
		t.Errorf("Stats = %+v", first.Stats)
	}

	second, err := r.Generate(ctx, decode(t, mnist), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit || second.Hash != first.Hash {
		t.Errorf("second run = hit %v, hash %s", second.CacheHit, second.Hash)
	}
	if !slices.Equal(second.Notebook.Sources(), first.Notebook.Sources()) || !slices.Equal(second.Skipped, first.Skipped) {
		t.Error("cached notebook differs from the generated one")
	}

	refreshed, _ := r.Generate(ctx, decode(t, mnist), Options{Refresh: true})
	if refreshed.CacheHit {
		t.Error("Refresh served from cache")
	}
	if c.sets != 2 {
		t.Errorf("cache writes = %d, want 2", c.sets)
	}
}

func TestGenerateKeyFollowsRegistry(t *testing.T) {
	ctx := context.Background()
	reg := builtinRegistry()
	r := NewRunner(fileCache(t), nil, reg, nil)
	p := decode(t, mnist)

	_, key1, _ := r.Fingerprint(p)
	if _, err := r.Generate(ctx, p, Options{}); err != nil {
		t.Fatal(err)
	}

	// A plugin providing the missing kind must not be answered from cache.
	reg.Register("Augmenter", func(n *nodeeditor.Node) notebook.Transformer { return augment{notebook.NewBase(n)} })
	_, key2, _ := r.Fingerprint(p)
	if key1 == key2 {
		t.Fatal("registry change did not change the cache key")
	}
	res, err := r.Generate(ctx, p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit || len(res.Skipped) != 0 {
		t.Errorf("after registering = hit %v, skipped %v", res.CacheHit, res.Skipped)
	}
}

type augment struct{ notebook.Base }

func (a augment) Cells() []notebook.Cell {
	return []notebook.Cell{notebook.CodeCell(a.Output("out") + " = " + a.Input("in"))}
}

type overridden struct{ notebook.Base }

func (overridden) Cells() []notebook.Cell {
	return []notebook.Cell{notebook.CodeCell("# OVERRIDDEN")}
}

func TestGenerateKeyFollowsOverride(t *testing.T) {
	ctx := context.Background()
	reg := builtinRegistry()
	r := NewRunner(fileCache(t), nil, reg, nil)

	first, err := r.Generate(ctx, decode(t, mnist), Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, key1, _ := r.Fingerprint(decode(t, mnist))

	// Same kinds, different constructor for one of them.
	reg.SetOrigin("dial-custom-layers@0.1.0")
	reg.Register("LayersEditor", func(n *nodeeditor.Node) notebook.Transformer { return overridden{notebook.NewBase(n)} })
	reg.SetOrigin("")
	_, key2, _ := r.Fingerprint(decode(t, mnist))
	if key1 == key2 {
		t.Fatal("overriding a kind did not change the cache key")
	}

	second, err := r.Generate(ctx, decode(t, mnist), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHit {
		t.Fatal("override answered from cache")
	}
	if !slices.Contains(second.Notebook.Sources(), "# OVERRIDDEN") {
		t.Errorf("sources = %q, want the overriding cell", second.Notebook.Sources())
	}
	if slices.Equal(second.Notebook.Sources(), first.Notebook.Sources()) {
		t.Error("notebook unchanged after override")
	}
}

func TestGenerateCycleNotCached(t *testing.T) {
	c := fileCache(t)
	r := NewRunner(c, nil, builtinRegistry(), nil)

	_, err := r.Generate(context.Background(), decode(t, loop), Options{})
	if !errors.Is(err, nodeeditor.ErrCyclicGraph) {
		t.Fatalf("Generate() error = %v, want ErrCyclicGraph", err)
	}
	if c.sets != 0 {
		t.Errorf("cyclic scene was cached")
	}
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil, nil, nil, nil).Generate(ctx, decode(t, mnist), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := NewRunner(nil, nil, builtinRegistry(), nil)

	out := filepath.Join(dir, "mnist.ipynb")
	res, err := r.Export(ctx, decode(t, mnist), out, Options{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	nb, err := notebook.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Len() != res.Cells {
		t.Errorf("file has %d cells, result says %d", nb.Len(), res.Cells)
	}

	bad := filepath.Join(dir, "loop.ipynb")
	if _, err := r.Export(ctx, decode(t, loop), bad, Options{}); err == nil {
		t.Fatal("Export(cyclic) error = nil")
	}
	if _, err := os.Stat(bad); !errors.Is(err, fs.ErrNotExist) {
		t.Error("cyclic export wrote a file")
	}
}

// recorder counts hook events.
type recorder struct {
	observability.NoopCacheHooks
	starts, completes, hits, misses int
	lastErr                         error
}

func (r *recorder) OnGenerateStart(context.Context, string, int) { r.starts++ }
func (r *recorder) OnGenerateComplete(_ context.Context, _ string, _, _ int, _ time.Duration, err error) {
	r.completes++
	r.lastErr = err
}
func (r *recorder) OnCacheHit(context.Context, string)  { r.hits++ }
func (r *recorder) OnCacheMiss(context.Context, string) { r.misses++ }

func TestHooks(t *testing.T) {
	rec := &recorder{}
	observability.SetGeneratorHooks(rec)
	observability.SetCacheHooks(rec)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	r := NewRunner(fileCache(t), nil, builtinRegistry(), nil)
	_, _ = r.Generate(ctx, decode(t, mnist), Options{})
	_, _ = r.Generate(ctx, decode(t, mnist), Options{})
	_, _ = r.Generate(ctx, decode(t, loop), Options{})

	if rec.starts != 2 || rec.completes != 2 {
		t.Errorf("generator events = %d starts, %d completes; want 2 each", rec.starts, rec.completes)
	}
	if rec.hits != 1 || rec.misses != 2 {
		t.Errorf("cache events = %d hits, %d misses; want 1 and 2", rec.hits, rec.misses)
	}
	if !errors.Is(rec.lastErr, nodeeditor.ErrCyclicGraph) {
		t.Errorf("last completion error = %v", rec.lastErr)
	}
}

func TestGraph(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(fileCache(t), nil, builtinRegistry(), nil)
	p := decode(t, mnist)

	src, _, err := r.Graph(ctx, p, GraphOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Graph(dot) error = %v", err)
	}
	if !strings.Contains(string(src), `"aug" [label="Augmenter", style="rounded,filled,dashed"`) {
		t.Errorf("node without transformer not dimmed:\n%s", src)
	}

	svg, hit, err := r.Graph(ctx, p, GraphOptions{})
	if err != nil || hit || !strings.Contains(string(svg), "<svg") {
		t.Fatalf("Graph(svg) = hit %v, err %v", hit, err)
	}
	if _, hit, _ := r.Graph(ctx, p, GraphOptions{Format: FormatSVG}); !hit {
		t.Error("second Graph(svg) missed the cache")
	}

	if _, _, err := r.Graph(ctx, p, GraphOptions{Format: "pdf"}); err == nil {
		t.Error("Graph(pdf) error = nil")
	}
}
