// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lorecraft"
	"github.com/poiesic/lorecraft/config"
	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/excerpt"
	"github.com/poiesic/lorecraft/flows"
	"github.com/poiesic/lorecraft/keywords"
	"github.com/poiesic/lorecraft/loaders"
	"github.com/poiesic/lorecraft/slack"
	"github.com/poiesic/lorecraft/slackbot"
	badgerstore "github.com/poiesic/lorecraft/storage/badger"
	"github.com/poiesic/lorecraft/token/tiktoken"
)

func main() {
	app := &cli.App{
		Name:  "lorecraft",
		Usage: "Knowledge base builder and Slack answering bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the Slack events server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides LORECRAFT_LISTEN_ADDR)",
					},
				},
			},
			{
				Name:   "refresh",
				Usage:  "Rebuild the knowledge base from the configured sources",
				Action: refreshCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "sitemap",
						Usage: "Sitemap URL to crawl (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "repo",
						Usage: "GitHub repository owner/name to load (repeatable)",
					},
					&cli.StringFlag{
						Name:  "discourse",
						Usage: "Discourse forum base URL",
					},
					&cli.BoolFlag{
						Name:  "wipe",
						Usage: "Drop the collection before indexing",
					},
				},
			},
			{
				Name:      "digest",
				Usage:     "Post a digest of recent GitHub activity",
				ArgsUsage: "owner/repo",
				Action:    digestCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "window",
						Usage: "How far back to collect activity",
						Value: 24 * time.Hour,
					},
					&cli.BoolFlag{
						Name:  "story",
						Usage: "Narrate the digest with the chat model",
					},
					&cli.BoolFlag{
						Name:  "post",
						Usage: "Post the digest to the configured Slack channel",
					},
				},
			},
			{
				Name:   "metrics",
				Usage:  "Show what users have been asking about",
				Action: metricsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "queries",
						Usage: "How many recent questions to show",
						Value: 20,
					},
				},
			},
			{
				Name:      "excerpt",
				Usage:     "Generate excerpts for a local file and print them",
				ArgsUsage: "path",
				Action:    excerptCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func openApp(ctx context.Context) (*lorecraft.App, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	app, err := lorecraft.NewApp(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return app, cfg, nil
}

func serveCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, cfg, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if cfg.SlackBotToken == "" || cfg.SlackBotUser == "" {
		return fmt.Errorf("LORECRAFT_SLACK_BOT_TOKEN and LORECRAFT_SLACK_BOT_USER are required")
	}

	client := slack.NewClient(cfg.SlackBotToken)
	bot := slackbot.NewChatbot(client, app.Store(), app.Provider().Completer(), cfg.SlackBotUser,
		slackbot.WithMetrics(app.Extractor(), app.MetricsRepository()),
	)

	addr := cfg.ListenAddr
	if flagAddr := c.String("addr"); flagAddr != "" {
		addr = flagAddr
	}
	return slackbot.NewServer(bot).ListenAndServe(ctx, addr)
}

func refreshCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, cfg, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var sources []loaders.Loader

	if sitemaps := c.StringSlice("sitemap"); len(sitemaps) > 0 {
		loader, err := loaders.NewSitemapLoader(sitemaps)
		if err != nil {
			return err
		}
		sources = append(sources, loader)
	}

	for _, repo := range c.StringSlice("repo") {
		loader, err := loaders.NewGitHubRepoLoader(repo, loaders.WithToken(cfg.GitHubToken))
		if err != nil {
			return err
		}
		sources = append(sources, loader)
	}

	if forum := c.String("discourse"); forum != "" {
		loader, err := loaders.NewDiscourseLoader(forum,
			loaders.WithAPIKey(cfg.DiscourseAPIKey, cfg.DiscourseAPIUsername),
		)
		if err != nil {
			return err
		}
		sources = append(sources, loader)
	}

	if len(sources) == 0 {
		return fmt.Errorf("no sources configured: pass --sitemap, --repo, or --discourse")
	}

	opts := []flows.RefresherOption{flows.WithFingerprints(app.FingerprintRepository())}
	if c.Bool("wipe") {
		opts = append(opts, flows.WithWipe())
	}

	refresher := flows.NewRefresher(loaders.NewMulti(sources), app.Generator(), app.Store(), opts...)
	stats, err := refresher.Run(ctx)
	if stats != nil {
		fmt.Printf("loaded %d documents, skipped %d unchanged, indexed %d excerpts\n",
			stats.Loaded, stats.Skipped, stats.Indexed)
	}
	return err
}

func digestCommand(c *cli.Context) error {
	repo := c.Args().First()
	if repo == "" {
		return fmt.Errorf("usage: lorecraft digest owner/repo")
	}

	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := []flows.DigesterOption{flows.WithWindow(c.Duration("window"))}

	var app *lorecraft.App
	if c.Bool("story") {
		app, _, err = openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		opts = append(opts, flows.WithStory(app.Provider().Completer()))
	}

	if c.Bool("post") {
		if cfg.SlackBotToken == "" || cfg.SlackChannel == "" {
			return fmt.Errorf("LORECRAFT_SLACK_BOT_TOKEN and LORECRAFT_SLACK_CHANNEL are required to post")
		}
		opts = append(opts, flows.WithSlackPost(slack.NewClient(cfg.SlackBotToken), cfg.SlackChannel))
	}

	digester, err := flows.NewDigester(repo, cfg.GitHubToken, opts...)
	if err != nil {
		return err
	}

	digest, err := digester.Run(ctx)
	if err != nil {
		return err
	}

	if digest.Story != "" {
		fmt.Println(digest.Story)
	} else {
		fmt.Println(digest.Markdown)
	}
	return nil
}

func metricsCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The metrics command only needs local storage, not Qdrant or the
	// AI endpoints.
	backend, err := badgerstore.OpenBackend(cfg.DBPath, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	metrics, err := badgerstore.NewMetricsRepository(backend)
	if err != nil {
		return err
	}

	report, err := flows.ReadMetricsReport(ctx, metrics, c.Int("queries"))
	if err != nil {
		return err
	}
	fmt.Print(report.Render())
	return nil
}

func excerptCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: lorecraft excerpt path")
	}

	ctx, cancel := signalContext()
	defer cancel()

	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	codec, err := tiktoken.New(tiktoken.DefaultEncoding)
	if err != nil {
		return err
	}
	generator, err := excerpt.NewGenerator(codec, keywords.NewFrequencyExtractor())
	if err != nil {
		return err
	}
	defer generator.Release()

	doc := core.NewDocument(string(text), core.Metadata{
		Title:  path,
		Link:   path,
		Source: "file",
	})

	excerpts, err := generator.Excerpts(ctx, doc)
	if err != nil {
		return err
	}

	for i, ex := range excerpts {
		if i > 0 {
			fmt.Println("\n---")
		}
		fmt.Println(ex.Text)
	}
	return nil
}
