// Package generator runs the preview image pipeline over a content root:
// scan post bundles, skip the ones that already have an image, render and
// write the rest.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"ogimage/common"
	"ogimage/config"
)

// Renderer turns a title and category into encoded image bytes
type Renderer interface {
	Compose(ctx context.Context, title, category string) ([]byte, error)
}

// Outcome is what happened to one post
type Outcome int

const (
	Generated Outcome = iota
	SkippedExisting
	SkippedMissingInput
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Generated:
		return "generated"
	case SkippedExisting:
		return "skipped (exists)"
	case SkippedMissingInput:
		return "skipped (no input)"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the outcome of one post
type Result struct {
	Post    Post
	Outcome Outcome
	Article *common.Article
	Err     error
}

// Summary collects the results of a run in processing order
type Summary struct {
	Results []Result
}

// Count returns how many posts ended with outcome o
func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d generated, %d skipped (exists), %d skipped (no input), %d failed",
		s.Count(Generated), s.Count(SkippedExisting), s.Count(SkippedMissingInput), s.Count(Failed))
}

// Generator writes preview images for the posts of a content root
type Generator struct {
	cfg      *config.Config
	renderer Renderer
	logger   *log.Logger
}

// NewGenerator creates a generator
func NewGenerator(cfg *config.Config, renderer Renderer) *Generator {
	return &Generator{
		cfg:      cfg,
		renderer: renderer,
		logger:   log.Default(),
	}
}

// SetLogger replaces the status logger
func (g *Generator) SetLogger(l *log.Logger) {
	g.logger = l
}

// Post builds the post descriptor for a bundle directory
func (g *Generator) Post(dir string) Post {
	return NewPost(dir, g.cfg.Content.InputName, g.cfg.Content.OutputName)
}

// Run processes every post under the content root in name order.
//
// The first failure stops the run unless ContinueOnError is set, in which
// case the failure is recorded and the remaining posts are still processed.
// The summary is returned in both cases.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	posts, err := Scan(g.cfg.Content.Dir, g.cfg.Content.InputName, g.cfg.Content.OutputName)
	if err != nil {
		return &Summary{}, err
	}

	summary := &Summary{Results: make([]Result, 0, len(posts))}
	var errs []error

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res := g.Process(ctx, post)
		summary.Results = append(summary.Results, res)

		if res.Err != nil {
			if !g.cfg.ContinueOnError {
				return summary, res.Err
			}
			errs = append(errs, res.Err)
		}
	}

	if len(errs) > 0 {
		return summary, fmt.Errorf("%d of %d posts failed: %w", len(errs), len(posts), errors.Join(errs...))
	}
	return summary, nil
}

// Process runs the skip guard and, if needed, renders and writes one post
func (g *Generator) Process(ctx context.Context, post Post) Result {
	res := Result{Post: post}

	exists, err := fileExists(post.OutputPath)
	if err != nil {
		return g.fail(res, common.FilesystemError("stat", post.OutputPath, err))
	}
	if exists {
		res.Outcome = SkippedExisting
		g.logger.Printf("Skipped (exists): %s", post.OutputPath)
		return res
	}

	exists, err = fileExists(post.InputPath)
	if err != nil {
		return g.fail(res, common.FilesystemError("stat", post.InputPath, err))
	}
	if !exists {
		res.Outcome = SkippedMissingInput
		g.logger.Printf("Skipped (no %s): %s", g.cfg.Content.InputName, post.Dir)
		return res
	}

	article, err := common.ParseArticle(post.InputPath, post.Name)
	if err != nil {
		return g.fail(res, err)
	}
	res.Article = article

	data, err := g.renderer.Compose(ctx, article.Title, article.Category)
	if err != nil {
		return g.fail(res, fmt.Errorf("failed to generate %s: %w", post.OutputPath, err))
	}

	if err := writeNew(post.OutputPath, data); err != nil {
		return g.fail(res, err)
	}

	res.Outcome = Generated
	g.logger.Printf("Generated: %s", post.OutputPath)
	return res
}

func (g *Generator) fail(res Result, err error) Result {
	res.Outcome = Failed
	res.Err = err
	g.logger.Printf("Failed: %s: %v", res.Post.Dir, err)
	return res
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// writeNew creates path and writes data. Parent directories are not
// created and an existing file is never replaced.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return common.FilesystemError("create", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return common.FilesystemError("write", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return common.FilesystemError("write", path, err)
	}
	return nil
}
