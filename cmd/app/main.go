package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/menusitemap/internal"
	pkgconfig "github.com/starford/menusitemap/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// oneShotOptions routes logs to stderr so command output on stdout stays clean.
func oneShotOptions(cfg *internal.Config) []internal.Option {
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithOutput(os.Stdout),
		internal.WithLogOutput(os.Stderr),
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func generate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := oneShotOptions(cfg)

	if path := cmd.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		opts = append(opts, internal.WithOutput(f))
	}

	return internal.Generate(ctx, cmd.String("base-url"), cmd.Bool("verify"), opts...)
}

func entries(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Entries(ctx, cmd.String("base-url"), cmd.Bool("explain"), oneShotOptions(cfg)...)
}

func importSnapshots(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Import(ctx, cmd.Args().First(), oneShotOptions(cfg)...)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol.
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version), internal.WithLogOutput(os.Stderr))
}

func newBaseURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "base-url",
		Aliases: []string{"b"},
		Usage:   "Site root, overrides site.base_url",
		Sources: cli.EnvVars("SITE_BASE_URL"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "menusitemap",
		Usage:   "XML sitemap generator for CMS navigation menus and articles",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve /sitemap.xml, the admin API and metrics",
				Action: serve,
			},
			{
				Name:  "generate",
				Usage: "Write the sitemap XML to stdout or a file",
				Flags: []cli.Flag{
					newBaseURLFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Parse the document back and check it before writing",
					},
				},
				Action: generate,
			},
			{
				Name:  "entries",
				Usage: "Print the sitemap entries as a table",
				Flags: []cli.Flag{
					newBaseURLFlag(),
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Also list every node and article with the reason it was left out",
					},
				},
				Action: entries,
			},
			{
				Name:      "import",
				Usage:     "Import the snapshot directory, or one snapshot file relative to it",
				ArgsUsage: "[snapshot.yaml]",
				Action:    importSnapshots,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
