// Package sitemap assembles and serializes the sitemap of a site from its
// navigation tree and content items.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/menusitemap/internal/apperr"
	"github.com/starford/menusitemap/internal/metrics"
	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/navtree"
	"github.com/starford/menusitemap/internal/provider"
	"github.com/starford/menusitemap/internal/resolver"
)

// Options selects what a pass includes and how records are resolved.
type Options struct {
	IncludeMenu        bool
	IncludeArticles    bool
	Rules              resolver.Rules
	CategoryLayouts    []string
	DeriveMissingPaths bool
}

// DefaultOptions matches the stock plugin configuration.
func DefaultOptions() Options {
	return Options{
		IncludeMenu:     true,
		IncludeArticles: true,
		Rules:           resolver.DefaultRules(),
		CategoryLayouts: []string{"blog"},
	}
}

// Decision kinds.
const (
	KindNavigation = "navigation"
	KindContent    = "content"
)

// Decision records what happened to one navigation node or content item.
type Decision struct {
	Kind      string          `json:"kind"`
	ID        int64           `json:"id"`
	Alias     string          `json:"alias"`
	Path      string          `json:"path,omitempty"`
	Loc       string          `json:"loc,omitempty"`
	Via       resolver.Via    `json:"via,omitempty"`
	NodeID    int64           `json:"node_id,omitempty"`
	Reason    resolver.Reason `json:"reason,omitempty"`
	Duplicate bool            `json:"duplicate,omitempty"`
}

// Included reports whether the record made it into the sitemap.
func (d Decision) Included() bool {
	return d.Reason == resolver.Included && !d.Duplicate
}

// Result is the outcome of one generation pass.
type Result struct {
	GenerationID   string         `json:"generation_id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	BaseURL        string         `json:"base_url"`
	Entries        []models.Entry `json:"entries"`
	Navigation     []Decision     `json:"navigation"`
	Content        []Decision     `json:"content"`
	DuplicateNodes []int64        `json:"duplicate_nodes,omitempty"`
}

// ContentDecision returns the decision for content item id.
func (r *Result) ContentDecision(id int64) (Decision, bool) {
	for _, d := range r.Content {
		if d.ID == id {
			return d, true
		}
	}
	return Decision{}, false
}

// Generator runs generation passes against a data provider. It holds only
// read-only configuration and is safe for concurrent use.
type Generator struct {
	source   provider.DataProvider
	opts     Options
	recorder metrics.Recorder
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a Generator reading from source.
func NewGenerator(source provider.DataProvider, opts Options, options ...Option) *Generator {
	g := &Generator{
		source:   source,
		opts:     opts,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// Generate computes the sitemap for a site rooted at baseURL. A data source
// failure fails the whole pass with apperr.ErrSourceUnavailable; no partial
// result is returned.
func (g *Generator) Generate(ctx context.Context, baseURL string) (*Result, error) {
	if baseURL == "" {
		return nil, errors.New("generate: base url is required")
	}
	start := g.now()
	res, err := g.generate(ctx, baseURL, start)
	g.recorder.ObserveGenerationDuration(g.now().Sub(start))
	if err != nil {
		g.recorder.IncGenerationOutcome(metrics.OutcomeFailed)
		g.logger.Error("generate: pass failed", "error", err)
		return nil, err
	}
	g.recorder.IncGenerationOutcome(metrics.OutcomeSuccess)
	return res, nil
}

func (g *Generator) generate(ctx context.Context, baseURL string, now time.Time) (*Result, error) {
	res := &Result{
		GenerationID: uuid.NewString(),
		GeneratedAt:  now,
		BaseURL:      baseURL,
	}
	log := g.logger.With(slog.String("generation_id", res.GenerationID))

	home := Homepage(baseURL, now)

	if !g.opts.IncludeMenu && !g.opts.IncludeArticles {
		res.Entries = []models.Entry{home}
		g.finish(log, res, 0, 0)
		return res, nil
	}

	nodes, err := g.source.FetchNavigationNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate: fetch navigation: %w: %w", apperr.ErrSourceUnavailable, err)
	}
	var items []models.ContentItem
	if g.opts.IncludeArticles {
		items, err = g.source.FetchContentItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate: fetch content: %w: %w", apperr.ErrSourceUnavailable, err)
		}
	}

	tree := navtree.Load(nodes, navtree.Options{DeriveMissingPaths: g.opts.DeriveMissingPaths})
	res.DuplicateNodes = tree.Duplicates()
	for _, id := range res.DuplicateNodes {
		log.Warn("generate: duplicate navigation node dropped", slog.Int64("node_id", id))
	}

	// Candidate entries of each group, with the decision each one came from.
	var navEntries, contentEntries []models.Entry
	var navFrom, contentFrom []int

	if g.opts.IncludeMenu {
		nav := resolver.NewNavigationResolver(tree, baseURL, g.opts.Rules, now)
		for _, n := range tree.Nodes() {
			r := nav.Resolve(n)
			d := Decision{Kind: KindNavigation, ID: n.ID, Alias: n.Alias, Path: r.Path, Reason: r.Reason}
			if r.OK() {
				d.Loc = r.Entry.Loc
				navEntries = append(navEntries, r.Entry)
				navFrom = append(navFrom, len(res.Navigation))
			} else {
				g.recorder.IncExcluded(metrics.SourceNavigation, string(r.Reason))
				log.Debug("generate: navigation node excluded",
					slog.Int64("node_id", n.ID), slog.String("alias", n.Alias), slog.String("reason", string(r.Reason)))
			}
			res.Navigation = append(res.Navigation, d)
		}
	}

	if g.opts.IncludeArticles {
		categories := navtree.BuildCategoryIndex(tree, g.opts.CategoryLayouts)
		content := resolver.NewContentResolver(tree, categories, baseURL)
		for _, item := range items {
			r := content.Resolve(item)
			d := Decision{Kind: KindContent, ID: item.ID, Alias: item.Alias, Path: r.Path,
				Via: r.Via, NodeID: r.NodeID, Reason: r.Reason}
			if r.OK() {
				d.Loc = r.Entry.Loc
				contentEntries = append(contentEntries, r.Entry)
				contentFrom = append(contentFrom, len(res.Content))
			} else {
				g.recorder.IncExcluded(metrics.SourceContent, string(r.Reason))
				log.Debug("generate: content item excluded",
					slog.Int64("item_id", item.ID), slog.String("alias", item.Alias), slog.String("reason", string(r.Reason)))
			}
			res.Content = append(res.Content, d)
		}
	}

	var dropped []int
	res.Entries, dropped = Assemble(home, navEntries, contentEntries)

	navCount, contentCount := len(navEntries), len(contentEntries)
	for _, pos := range dropped {
		switch i := pos - 1; {
		case i < 0:
			// The homepage always comes first and is never dropped.
		case i < len(navEntries):
			res.Navigation[navFrom[i]].Duplicate = true
			navCount--
		default:
			res.Content[contentFrom[i-len(navEntries)]].Duplicate = true
			contentCount--
		}
	}

	g.finish(log, res, navCount, contentCount)
	return res, nil
}

func (g *Generator) finish(log *slog.Logger, res *Result, navCount, contentCount int) {
	g.recorder.SetEntryCount(metrics.SourceNavigation, navCount)
	g.recorder.SetEntryCount(metrics.SourceContent, contentCount)
	g.recorder.SetEntryCount(metrics.SourceTotal, len(res.Entries))
	log.Info("generate: pass complete",
		slog.Int("entries", len(res.Entries)),
		slog.Int("navigation", navCount),
		slog.Int("content", contentCount),
		slog.Duration("elapsed", g.now().Sub(res.GeneratedAt)))
}
