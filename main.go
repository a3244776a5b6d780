package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"ogimage/composer"
	"ogimage/config"
	"ogimage/fonts"
	"ogimage/generator"
	"ogimage/watcher"
)

func main() {
	app := &cli.App{
		Name:  "ogimage",
		Usage: "generate featured.png preview images for blog posts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "ogimage.yaml",
				Usage:   "config file (optional)",
			},
			&cli.StringFlag{
				Name:  "content-dir",
				Usage: "directory holding one subdirectory per post",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "file with OGIMAGE_* variables (optional)",
			},
			&cli.BoolFlag{
				Name:  "continue-on-error",
				Usage: "keep processing posts after a failure",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "keep running and generate images for new posts",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only print errors",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return nil, err
	}

	cfg, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if dir := c.String("content-dir"); dir != "" {
		cfg.Content.Dir = dir
	}
	if c.Bool("continue-on-error") {
		cfg.ContinueOnError = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	if c.Bool("quiet") {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log.Printf("Loaded config: scanning %s", cfg.Content.Dir)

	var src fonts.Source = fonts.NewFetcher(cfg.Font)
	if cfg.Font.Cache {
		src = fonts.Cached(src)
	}
	gen := generator.NewGenerator(cfg, composer.New(cfg.Image, cfg.ThemeTable(), src))

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := gen.Run(ctx)
	if !c.Bool("quiet") {
		fmt.Printf("Done: %s\n", summary)
	}
	if err != nil {
		return err
	}

	if c.Bool("watch") {
		return watch(ctx, cfg, gen)
	}
	return nil
}

func watch(ctx context.Context, cfg *config.Config, gen *generator.Generator) error {
	w, err := watcher.NewWatcher(cfg.Content.Dir, cfg.Content.InputName, gen)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	log.Println("Watcher started. Press Ctrl+C to stop")

	failures := 0
	for {
		select {
		case res, ok := <-w.Events():
			if !ok {
				return nil
			}
			// the generator already logged the failure; keep watching
			if res.Err != nil {
				failures++
				log.Printf("Watch failures so far: %d", failures)
			}
		case <-ctx.Done():
			log.Println("Shutting down...")
			return nil
		}
	}
}
