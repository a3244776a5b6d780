package common

import (
	"os"
	"unicode/utf8"
)

// Article holds the fields of a post that drive its preview image
type Article struct {
	FilePath string

	Title    string
	Category string

	FrontMatter FrontMatter
}

// NewArticle derives title and category from parsed front matter.
// fallbackTitle (usually the post directory name) is used when no title is set.
func NewArticle(fm FrontMatter, fallbackTitle string) *Article {
	a := &Article{
		FrontMatter: fm,
		Title:       fallbackTitle,
	}

	if title, ok := fm.String("title"); ok && title != "" {
		a.Title = title
	}

	if v, ok := fm.Value("categories"); ok {
		if v.IsList() {
			if items := v.Items(); len(items) > 0 {
				a.Category = items[0]
			}
		} else {
			a.Category = v.String()
		}
	}

	return a
}

// ParseArticle reads a markdown file and derives its article fields
func ParseArticle(filePath, fallbackTitle string) (*Article, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, FilesystemError("read", filePath, err)
	}

	a := NewArticle(ParseFrontMatter(string(data)), fallbackTitle)
	a.FilePath = filePath
	return a, nil
}

// TitleLength counts the title in characters, not bytes
func (a *Article) TitleLength() int {
	return utf8.RuneCountInString(a.Title)
}
