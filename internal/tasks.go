package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/starford/menusitemap/internal/apperr"
	"github.com/starford/menusitemap/internal/mcpserver"
	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/sitemap"
)

// oneShot wires the application for a command that runs once and exits.
// Logs go to the configured log output, stderr for the CLI.
func oneShot(ctx context.Context, opts []Option) (*application, *runtime, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, nil, err
	}
	rt, err := app.wire(ctx, app.newLogger(), nil)
	if err != nil {
		return nil, nil, err
	}
	return app, rt, nil
}

func (rt *runtime) baseURL(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if rt.cfg.Site.BaseURL == "" {
		return "", errors.New("base url is required: set site.base_url or pass --base-url")
	}
	return rt.cfg.Site.BaseURL, nil
}

// Generate writes the sitemap XML to the configured output. Snapshots are
// synced first when a snapshot directory is configured. With verify set the
// document is parsed back and compared with the generated entries before
// anything is written.
func Generate(ctx context.Context, baseURL string, verify bool, opts ...Option) error {
	app, rt, err := oneShot(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	base, err := rt.baseURL(baseURL)
	if err != nil {
		return err
	}
	rt.initialSync(ctx, nil)

	res, err := rt.svc.Generate(ctx, base)
	if err != nil {
		return err
	}
	doc, err := sitemap.Marshal(res.Entries)
	if err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	if verify {
		if err := verifySitemap(doc, res.Entries); err != nil {
			return err
		}
		rt.logger.Info("generate: sitemap verified", slog.Int("entries", len(res.Entries)))
	}
	if _, err := app.out.Write(doc); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

// verifySitemap parses doc and checks that it lists exactly want, in order,
// with unique locations.
func verifySitemap(doc []byte, want []models.Entry) error {
	got, err := sitemap.Decode(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if len(got) != len(want) {
		return fmt.Errorf("verify: document has %d urls, generated %d", len(got), len(want))
	}
	if _, dropped := sitemap.Dedupe(got); len(dropped) > 0 {
		return fmt.Errorf("verify: duplicate location %s", got[dropped[0]].Loc)
	}
	for i := range got {
		if got[i].Loc != want[i].Loc || got[i].ChangeFreq != want[i].ChangeFreq {
			return fmt.Errorf("verify: url %d is %s, generated %s", i, got[i].Loc, want[i].Loc)
		}
	}
	return nil
}

// Entries renders the generation report as tables: the sitemap entries, and
// with explain set, every navigation node and content item with the reason
// it was left out.
func Entries(ctx context.Context, baseURL string, explain bool, opts ...Option) error {
	app, rt, err := oneShot(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	base, err := rt.baseURL(baseURL)
	if err != nil {
		return err
	}
	rt.initialSync(ctx, nil)

	res, err := rt.svc.Generate(ctx, base)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(app.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Loc", "Last Modified", "Change Freq", "Priority"})
	for i, e := range res.Entries {
		lastMod := ""
		if !e.LastMod.IsZero() {
			lastMod = e.LastMod.UTC().Format(time.RFC3339)
		}
		priority := ""
		if e.Priority != nil {
			priority = strconv.FormatFloat(*e.Priority, 'f', 1, 64)
		}
		t.AppendRow(table.Row{i + 1, e.Loc, lastMod, string(e.ChangeFreq), priority})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d entries", len(res.Entries)), "", "", ""})
	t.Render()

	if !explain {
		return nil
	}

	d := table.NewWriter()
	d.SetOutputMirror(app.out)
	d.SetStyle(table.StyleLight)
	d.AppendHeader(table.Row{"Kind", "ID", "Alias", "Loc", "Via", "Reason"})
	for _, group := range [][]sitemap.Decision{res.Navigation, res.Content} {
		for _, dec := range group {
			reason := string(dec.Reason)
			if dec.Duplicate {
				reason = "duplicate"
			}
			d.AppendRow(table.Row{dec.Kind, dec.ID, dec.Alias, dec.Loc, string(dec.Via), reason})
		}
	}
	d.Render()
	return nil
}

// Import syncs the snapshot directory into the store. With file set only
// that snapshot is imported.
func Import(ctx context.Context, file string, opts ...Option) error {
	app, rt, err := oneShot(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	if rt.syncer == nil {
		return fmt.Errorf("import: %w", apperr.ErrSyncDisabled)
	}

	if file != "" {
		if err := rt.syncer.ImportFile(ctx, file); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(app.out, "imported: %s\n", file)
		return nil
	}

	report, err := rt.svc.Sync(ctx)
	if err != nil {
		return err
	}
	rt.logger.Info("import complete",
		slog.Int("imported", len(report.Imported)),
		slog.Int("removed", len(report.Removed)),
		slog.Int("failed", len(report.Failed)))
	for _, p := range report.Imported {
		_, _ = fmt.Fprintf(app.out, "imported: %s\n", p)
	}
	for _, p := range report.Removed {
		_, _ = fmt.Fprintf(app.out, "removed: %s\n", p)
	}
	for _, p := range report.Failed {
		_, _ = fmt.Fprintf(app.out, "failed: %s\n", p)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("import: %d snapshot(s) failed: %w", len(report.Failed), apperr.ErrInvalidSnapshot)
	}
	return nil
}

// ServeMCP runs the MCP server on stdio until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, rt, err := oneShot(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	rt.initialSync(ctx, nil)

	srv := mcpserver.New(rt.svc, rt.cfg.Site.BaseURL, app.version)
	rt.logger.Info("mcp server starting on stdio")
	return srv.ServeStdio()
}
