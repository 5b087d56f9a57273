package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/davafons/dial/pkg/buildinfo"
	"github.com/davafons/dial/pkg/cache"
	"github.com/davafons/dial/pkg/notebook"
	"github.com/davafons/dial/pkg/observability"
	"github.com/davafons/dial/pkg/project"
	"github.com/davafons/dial/pkg/render/dot"
)

// Runner generates notebooks with caching. It keeps no per-run state, so
// one runner can serve concurrent requests as long as the registry is not
// changed underneath it.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Registry *notebook.Registry
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer], a nil registry is empty and a nil logger
// discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, registry *notebook.Registry, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if registry == nil {
		registry = notebook.NewRegistry()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Registry: registry, Logger: logger}
}

// cachedNotebook is the cache entry for a generated notebook.
type cachedNotebook struct {
	Notebook json.RawMessage `json:"notebook"`
	Skipped  []string        `json:"skipped,omitempty"`
}

// Fingerprint returns the content hash of p and its notebook cache key.
func (r *Runner) Fingerprint(p *project.Project) (hash, key string, err error) {
	data, err := p.MarshalJSON()
	if err != nil {
		return "", "", err
	}
	hash = cache.Hash(data)
	key = r.Keyer.NotebookKey(hash, cache.NotebookKeyOpts{
		Kinds:    r.Registry.Kinds(),
		Bindings: r.Registry.Bindings(),
		Version:  buildinfo.Version,
	})
	return hash, key, nil
}

// Generate builds the notebook for p.
func (r *Runner) Generate(ctx context.Context, p *project.Project, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	hash, key, err := r.Fingerprint(p)
	if err != nil {
		return nil, fmt.Errorf("fingerprint project: %w", err)
	}
	res := &Result{
		Hash:  hash,
		Stats: Stats{Nodes: p.Scene().Len(), Edges: p.Scene().EdgeCount()},
	}

	if !opts.Refresh {
		if nb, skipped, ok := r.lookup(ctx, key); ok {
			res.Notebook, res.Skipped, res.CacheHit = nb, skipped, true
			res.Cells = nb.Len()
			res.Stats.Duration = time.Since(start)
			r.Logger.Debug("notebook from cache", "project", p.Name(), "hash", hash[:12])
			return res, nil
		}
	}

	hooks := observability.Generator()
	hooks.OnGenerateStart(ctx, p.Name(), res.Stats.Nodes)

	gen := notebook.NewGenerator(r.Registry, r.Logger)
	if err := gen.SetProject(p); err != nil {
		hooks.OnGenerateComplete(ctx, p.Name(), 0, 0, time.Since(start), err)
		return nil, err
	}
	res.Notebook = gen.Notebook()
	res.Cells = res.Notebook.Len()
	for _, n := range gen.Skipped() {
		res.Skipped = append(res.Skipped, n.ID())
	}
	res.Stats.Duration = time.Since(start)
	hooks.OnGenerateComplete(ctx, p.Name(), res.Cells, len(res.Skipped), res.Stats.Duration, nil)

	r.store(ctx, key, res)
	r.Logger.Info("generated notebook",
		"project", p.Name(),
		"cells", res.Cells,
		"skipped", len(res.Skipped),
		"duration", res.Stats.Duration)
	return res, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*notebook.Notebook, []string, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "notebook")
		return nil, nil, false
	}
	var entry cachedNotebook
	if err := json.Unmarshal(data, &entry); err != nil {
		observability.Cache().OnCacheMiss(ctx, "notebook")
		return nil, nil, false
	}
	nb, err := notebook.Parse(entry.Notebook)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "notebook")
		return nil, nil, false
	}
	observability.Cache().OnCacheHit(ctx, "notebook")
	return nb, entry.Skipped, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	nb, err := res.Notebook.MarshalJSON()
	if err != nil {
		return
	}
	data, err := json.Marshal(cachedNotebook{Notebook: nb, Skipped: res.Skipped})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLNotebook); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "notebook", len(data))
}

// Export generates the notebook for p and writes it to path. Nothing is
// written when generation fails.
func (r *Runner) Export(ctx context.Context, p *project.Project, path string, opts Options) (*Result, error) {
	res, err := r.Generate(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	if err := notebook.WriteFile(path, res.Notebook); err != nil {
		return nil, err
	}
	r.Logger.Info("saved notebook", "path", path)
	return res, nil
}

// Graph draws the scene of p. Nodes without a registered transformer are
// dimmed. Rendered images are cached; DOT source is not.
func (r *Runner) Graph(ctx context.Context, p *project.Project, opts GraphOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if !IsValidFormat(opts.Format) {
		return nil, false, fmt.Errorf("unknown graph format %q (want one of %v)", opts.Format, ValidFormats)
	}

	dimmed := make(map[string]bool)
	for _, n := range p.Scene().Nodes() {
		if !r.Registry.Has(n.Kind()) {
			dimmed[n.ID()] = true
		}
	}
	src := dot.ToDOT(p.Scene(), dot.Options{Detailed: opts.Detailed, Dimmed: dimmed})
	if opts.Format == FormatDOT {
		return []byte(src), false, nil
	}

	key := r.Keyer.GraphKey(cache.Hash([]byte(src)), cache.GraphKeyOpts{Format: opts.Format, Detailed: opts.Detailed})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "graph")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	var out []byte
	var err error
	switch opts.Format {
	case FormatSVG:
		out, err = dot.RenderSVG(ctx, src)
	case FormatPNG:
		out, err = dot.RenderPNG(ctx, src)
	}
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, out, cache.TTLGraph); err == nil {
		observability.Cache().OnCacheSet(ctx, "graph", len(out))
	}
	return out, false, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
