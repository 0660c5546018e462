package sitemap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/menusitemap/internal/apperr"
	"github.com/starford/menusitemap/internal/metrics"
	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/provider"
	"github.com/starford/menusitemap/internal/resolver"
)

const base = "https://www.example.com"

var genTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return genTime }

func component(id int64, alias, path, link string) models.NavigationNode {
	return models.NavigationNode{ID: id, Alias: alias, Path: path, Link: link,
		Type: models.NodeTypeComponent, ParentID: 1, Level: 1, Language: models.AllLanguages}
}

func siteFixture() *provider.Static {
	return &provider.Static{
		Nodes: []models.NavigationNode{
			component(101, "home", "home", "index.php?option=com_content&view=featured"),
			{ID: 102, Alias: "investor-relations", Path: "investor-relations",
				Link: "index.php?option=com_content&view=category&layout=blog&id=5",
				Type: models.NodeTypeComponent, ParentID: 1, Level: 1, Language: "en-GB"},
			component(103, "about", "about", "index.php?option=com_content&view=article&id=40"),
			{ID: 104, Alias: "sep", Type: models.NodeTypeSeparator, ParentID: 1, Level: 1},
			{ID: 105, Alias: "docs", Link: "https://docs.example.org", Type: models.NodeTypeURL, ParentID: 1, Level: 1},
			component(106, "root", "", "index.php?option=com_content&view=featured"),
			component(107, "login", "login", "index.php?option=com_users&view=login"),
		},
		Items: []models.ContentItem{
			{ID: 41, Alias: "q3-results", CategoryID: 5, CategoryAlias: "investor-relations",
				Modified: genTime.Add(-24 * time.Hour), Created: genTime.Add(-72 * time.Hour)},
			{ID: 40, Alias: "about-us", CategoryID: 9, Created: genTime.Add(-96 * time.Hour)},
			{ID: 42, Alias: "lost", CategoryID: 77, Created: genTime.Add(-96 * time.Hour)},
		},
	}
}

func locs(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Loc
	}
	return out
}

func TestGenerate_FullSite(t *testing.T) {
	g := NewGenerator(siteFixture(), DefaultOptions(), WithClock(fixedClock))
	res, err := g.Generate(context.Background(), base)
	require.NoError(t, err)

	assert.Equal(t, []string{
		base + "/",
		base + "/home",
		base + "/en/investor-relations",
		base + "/about",
		base + "/en/investor-relations/q3-results",
	}, locs(res.Entries))
	assert.NotEmpty(t, res.GenerationID)

	q3 := res.Entries[4]
	assert.True(t, q3.LastMod.Equal(genTime.Add(-24*time.Hour)))
	assert.Equal(t, models.ChangeWeekly, q3.ChangeFreq)
	assert.InDelta(t, 0.6, *q3.Priority, 1e-9)

	about := res.Entries[3]
	assert.True(t, about.LastMod.Equal(genTime))
	assert.InDelta(t, 0.8, *about.Priority, 1e-9)
}

func TestGenerate_HomepageFirst(t *testing.T) {
	g := NewGenerator(siteFixture(), DefaultOptions(), WithClock(fixedClock))
	res, err := g.Generate(context.Background(), base+"/")
	require.NoError(t, err)

	home := res.Entries[0]
	assert.Equal(t, base+"/", home.Loc)
	assert.Equal(t, models.ChangeDaily, home.ChangeFreq)
	assert.InDelta(t, 1.0, *home.Priority, 1e-9)
	assert.True(t, home.LastMod.Equal(genTime))
}

func TestGenerate_ExclusionReasons(t *testing.T) {
	g := NewGenerator(siteFixture(), DefaultOptions(), WithClock(fixedClock))
	res, err := g.Generate(context.Background(), base)
	require.NoError(t, err)

	reasons := map[int64]resolver.Reason{}
	for _, d := range res.Navigation {
		reasons[d.ID] = d.Reason
	}
	assert.Equal(t, resolver.ReasonStructuralType, reasons[104])
	assert.Equal(t, resolver.ReasonStructuralType, reasons[105])
	assert.Equal(t, resolver.ReasonRootAlias, reasons[106])
	assert.Equal(t, resolver.ReasonReservedArea, reasons[107])

	lost, ok := res.ContentDecision(42)
	require.True(t, ok)
	assert.Equal(t, resolver.ReasonNoHome, lost.Reason)
	assert.False(t, lost.Included())
}

func TestGenerate_ArticleNodeDuplicateDropped(t *testing.T) {
	g := NewGenerator(siteFixture(), DefaultOptions(), WithClock(fixedClock))
	res, err := g.Generate(context.Background(), base)
	require.NoError(t, err)

	d, ok := res.ContentDecision(40)
	require.True(t, ok)
	assert.Equal(t, resolver.ViaArticleNode, d.Via)
	assert.Equal(t, int64(103), d.NodeID)
	assert.Equal(t, base+"/about", d.Loc)
	assert.True(t, d.Duplicate, "navigation entry for the same location came first")
	assert.False(t, d.Included())
}

func TestGenerate_UniqueLocations(t *testing.T) {
	src := siteFixture()
	src.Nodes = append(src.Nodes, component(108, "about-copy", "about", "index.php?option=com_content&view=featured"))
	g := NewGenerator(src, DefaultOptions(), WithClock(fixedClock))
	res, err := g.Generate(context.Background(), base)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range res.Entries {
		key := NormalizeLoc(e.Loc)
		assert.False(t, seen[key], "duplicate location %s", e.Loc)
		seen[key] = true
	}
}

func TestGenerate_TrailingSlashDuplicateKeepsFirst(t *testing.T) {
	src := siteFixture()
	src.Nodes = append(src.Nodes,
		component(108, "press", "press", "index.php?option=com_content&view=featured"),
		component(109, "press-slash", "press/", "index.php?option=com_contact&view=featured"),
	)
	res, err := NewGenerator(src, DefaultOptions(), WithClock(fixedClock)).Generate(context.Background(), base)
	require.NoError(t, err)

	var press []string
	for _, e := range res.Entries {
		if NormalizeLoc(e.Loc) == base+"/press" {
			press = append(press, e.Loc)
		}
	}
	assert.Equal(t, []string{base + "/press"}, press)

	doc, err := Marshal(res.Entries)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(doc), "<loc>"+base+"/press"))

	for _, d := range res.Navigation {
		switch d.ID {
		case 108:
			assert.True(t, d.Included(), "first node keeps the location")
		case 109:
			assert.Equal(t, base+"/press/", d.Loc)
			assert.True(t, d.Duplicate)
		}
	}
}

func TestGenerate_IncludesOff(t *testing.T) {
	src := &provider.Static{Err: errors.New("must not be called")}
	opts := DefaultOptions()
	opts.IncludeMenu = false
	opts.IncludeArticles = false

	res, err := NewGenerator(src, opts, WithClock(fixedClock)).Generate(context.Background(), base)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, base+"/", res.Entries[0].Loc)

	data, err := Marshal(res.Entries)
	require.NoError(t, err)
	assert.Equal(t, 1, countURLs(string(data)))
}

func TestGenerate_MenuOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeArticles = false
	res, err := NewGenerator(siteFixture(), opts, WithClock(fixedClock)).Generate(context.Background(), base)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 4)
	assert.Empty(t, res.Content)
}

func TestGenerate_ArticlesOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeMenu = false
	res, err := NewGenerator(siteFixture(), opts, WithClock(fixedClock)).Generate(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, []string{
		base + "/",
		base + "/en/investor-relations/q3-results",
		base + "/about",
	}, locs(res.Entries))
	assert.Empty(t, res.Navigation)
}

func TestGenerate_SourceUnavailable(t *testing.T) {
	rec := &countingRecorder{}
	src := &provider.Static{Err: errors.New("connection refused")}
	_, err := NewGenerator(src, DefaultOptions(), WithRecorder(rec)).Generate(context.Background(), base)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeFailed])
}

func TestGenerate_RequiresBaseURL(t *testing.T) {
	_, err := NewGenerator(siteFixture(), DefaultOptions()).Generate(context.Background(), "")
	require.Error(t, err)
}

func TestGenerate_RecordsMetrics(t *testing.T) {
	rec := &countingRecorder{}
	g := NewGenerator(siteFixture(), DefaultOptions(), WithClock(fixedClock), WithRecorder(rec))
	_, err := g.Generate(context.Background(), base)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeSuccess])
	assert.Equal(t, 3, rec.counts[metrics.SourceNavigation])
	assert.Equal(t, 1, rec.counts[metrics.SourceContent])
	assert.Equal(t, 5, rec.counts[metrics.SourceTotal])
	assert.Equal(t, 2, rec.excluded[metrics.SourceNavigation+"/"+string(resolver.ReasonStructuralType)])
	assert.Equal(t, 1, rec.excluded[metrics.SourceContent+"/"+string(resolver.ReasonNoHome)])
}

func TestGenerate_DuplicateNodesReported(t *testing.T) {
	src := siteFixture()
	src.Nodes = append(src.Nodes, component(101, "shadow", "shadow", "index.php?option=com_content&view=featured"))
	res, err := NewGenerator(src, DefaultOptions(), WithClock(fixedClock)).Generate(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, []int64{101}, res.DuplicateNodes)
	assert.NotContains(t, locs(res.Entries), base+"/shadow")
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[metrics.Outcome]int
	counts   map[string]int
	excluded map[string]int
}

func (r *countingRecorder) init() {
	if r.outcomes == nil {
		r.outcomes = map[metrics.Outcome]int{}
		r.counts = map[string]int{}
		r.excluded = map[string]int{}
	}
}

func (r *countingRecorder) ObserveGenerationDuration(time.Duration) {}

func (r *countingRecorder) IncGenerationOutcome(o metrics.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	r.outcomes[o]++
}

func (r *countingRecorder) SetEntryCount(source string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	r.counts[source] = n
}

func (r *countingRecorder) IncExcluded(source, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	r.excluded[source+"/"+reason]++
}

func (r *countingRecorder) IncSnapshotSync(metrics.Outcome) {}
