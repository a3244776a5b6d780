package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ogimage/common"
)

// Post is one page bundle under the content root
type Post struct {
	Name       string
	Dir        string
	InputPath  string
	OutputPath string
}

// NewPost derives the document and image paths of the bundle at dir
func NewPost(dir, inputName, outputName string) Post {
	return Post{
		Name:       filepath.Base(dir),
		Dir:        dir,
		InputPath:  filepath.Join(dir, inputName),
		OutputPath: filepath.Join(dir, outputName),
	}
}

// Scan lists the immediate subdirectories of root as posts, sorted by name.
// Plain files are ignored; directories without a document are still listed.
func Scan(root, inputName, outputName string) ([]Post, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, common.FilesystemError("stat content root", root, err)
	}
	if !info.IsDir() {
		return nil, common.FilesystemError("scan content root", root, fmt.Errorf("not a directory"))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, common.FilesystemError("read content root", root, err)
	}

	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		posts = append(posts, NewPost(filepath.Join(root, entry.Name()), inputName, outputName))
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].Name < posts[j].Name })
	return posts, nil
}
