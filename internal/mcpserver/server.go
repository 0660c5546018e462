// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes sitemap tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/menusitemap/internal/sitemap"
	"github.com/starford/menusitemap/internal/siteservice"
)

// Resource URIs.
const (
	SitemapURI        = "menusitemap://sitemap.xml"
	SnapshotFormatURI = "menusitemap://snapshot-format"
)

// Server wraps the MCP server with sitemap tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *siteservice.Service
	baseURL string
}

// New creates an MCP server with all tools registered. baseURL is the
// default site root for tools called without one.
func New(svc *siteservice.Service, baseURL string, version string) *Server {
	s := &Server{svc: svc, baseURL: baseURL}

	s.mcp = server.NewMCPServer(
		"menusitemap",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	baseURLArg := mcp.WithString("base_url", mcp.Description("Site root, e.g. https://www.example.com (defaults to the configured one)"))

	s.mcp.AddTool(mcp.NewTool("generate_sitemap",
		mcp.WithDescription("Generate the XML sitemap from the navigation tree and published articles."),
		baseURLArg,
	), s.generateSitemap)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("Generate the sitemap and return its entries as JSON (loc, lastmod, changefreq, priority)."),
		baseURLArg,
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("explain_navigation",
		mcp.WithDescription("Explain, for every navigation node, whether it is listed and why not."),
		baseURLArg,
		mcp.WithBoolean("excluded_only", mcp.Description("Only return nodes that are not listed")),
	), s.explainNavigation)

	s.mcp.AddTool(mcp.NewTool("resolve_content",
		mcp.WithDescription("Resolve the sitemap location of one content item by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Content item id")),
		baseURLArg,
	), s.resolveContent)

	s.mcp.AddTool(mcp.NewTool("import_snapshot",
		mcp.WithDescription("Write a YAML snapshot into the snapshot directory and import it. "+
			"Content MUST follow the snapshot format; read it first via get_snapshot_format "+
			"or the "+SnapshotFormatURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the snapshot (must end with .yaml or .yml)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("YAML snapshot content")),
	), s.importSnapshot)

	s.mcp.AddTool(mcp.NewTool("get_snapshot_format",
		mcp.WithDescription("Returns the YAML snapshot format and the rules that turn it into sitemap entries."),
	), s.getSnapshotFormat)

	s.mcp.AddResource(
		mcp.NewResource(SitemapURI, "Sitemap",
			mcp.WithResourceDescription("The sitemap generated for the configured site root."),
			mcp.WithMIMEType("application/xml"),
		),
		s.readSitemapResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(SnapshotFormatURI, "Snapshot Format",
			mcp.WithResourceDescription("YAML snapshot format accepted by import_snapshot."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSnapshotFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) base(req mcp.CallToolRequest) (string, error) {
	if b := req.GetString("base_url", ""); b != "" {
		return b, nil
	}
	if s.baseURL == "" {
		return "", errors.New("base_url is required: no site root is configured")
	}
	return s.baseURL, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) generateSitemap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	base, err := s.base(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Sitemap(ctx, base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(doc)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	base, err := s.base(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Generate(ctx, base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res.Entries)
}

func (s *Server) explainNavigation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	base, err := s.base(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Generate(ctx, base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	excludedOnly := req.GetBool("excluded_only", false)
	nodes := make([]sitemap.Decision, 0, len(res.Navigation))
	for _, d := range res.Navigation {
		if !excludedOnly || !d.Included() {
			nodes = append(nodes, d)
		}
	}
	return jsonResult(nodes)
}

func (s *Server) resolveContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	base, err := s.base(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Content(ctx, base, int64(id))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) importSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	created, err := s.svc.PutSnapshot(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verb := "updated"
	if created {
		verb = "created"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", verb, path)), nil
}

func (s *Server) getSnapshotFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SnapshotFormat), nil
}

func (s *Server) readSitemapResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if s.baseURL == "" {
		return nil, errors.New("no site root is configured")
	}
	doc, err := s.svc.Sitemap(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SitemapURI,
			MIMEType: "application/xml",
			Text:     string(doc),
		},
	}, nil
}

func (s *Server) readSnapshotFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SnapshotFormatURI,
			MIMEType: "text/markdown",
			Text:     SnapshotFormat,
		},
	}, nil
}
