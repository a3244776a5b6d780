package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"ogimage/common"
	"ogimage/composer"
	"ogimage/config"
	"ogimage/fonts"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "ogpreview",
		Usage:     "render the preview image of one post, overwriting the output",
		ArgsUsage: "<index.md> [out.png]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "ogimage.yaml",
				Usage: "config file (optional)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "file with OGIMAGE_* variables (optional)",
			},
			&cli.BoolFlag{
				Name:  "svg",
				Usage: "write the intermediate SVG instead of PNG",
			},
		},
		Action: preview,
	}
}

func preview(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: ogpreview <index.md> [out.png]", 1)
	}
	articlePath := c.Args().Get(0)
	outPath := "featured-preview.png"
	if c.NArg() > 1 {
		outPath = c.Args().Get(1)
	}

	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	article, err := common.ParseArticle(articlePath, filepath.Base(filepath.Dir(articlePath)))
	if err != nil {
		return err
	}
	fmt.Printf("Article: %s (category: %q)\n", article.Title, article.Category)

	comp := composer.New(cfg.Image, cfg.ThemeTable(), fonts.NewFetcher(cfg.Font))

	var data []byte
	if c.Bool("svg") {
		data, err = comp.SVG(c.Context, article.Title, article.Category)
	} else {
		data, err = comp.Compose(c.Context, article.Title, article.Category)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return common.FilesystemError("write", outPath, err)
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}
