// Package dataset reads the per-module word datasets and watches them for
// changes.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/lehmann314159/tangocho/internal/models"
)

// Loader loads the full word list of one module
type Loader interface {
	Load(ctx context.Context, module models.ModuleConfig) ([]models.WordRecord, error)
}

// ModulePath returns the dataset path of a module type, relative to the
// data root
func ModulePath(moduleType string) string {
	return path.Join("modules", moduleType, "data", moduleType+".json")
}

// DefaultModules returns the nine supported parts of speech
func DefaultModules() []models.ModuleConfig {
	modules := []models.ModuleConfig{
		{Type: "noun", Name: "名词"},
		{Type: "verb", Name: "动词"},
		{Type: "adjective", Name: "形容词"},
		{Type: "adjectival-verb", Name: "形容动词"},
		{Type: "adverb", Name: "副词"},
		{Type: "pronoun", Name: "代词"},
		{Type: "loanword", Name: "外来语"},
		{Type: "other-word", Name: "其他词"},
		{Type: "fixed-collocations", Name: "固定搭配"},
	}
	for i := range modules {
		modules[i].Path = ModulePath(modules[i].Type)
	}
	return modules
}

// FSLoader reads datasets from a file system rooted at the data directory
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader creates a loader reading from fsys
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// NewDirLoader creates a loader reading from a directory on disk
func NewDirLoader(dir string) *FSLoader {
	return NewFSLoader(os.DirFS(dir))
}

// Load reads and decodes the module's JSON array
func (l *FSLoader) Load(ctx context.Context, module models.ModuleConfig) ([]models.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := module.Path
	if p == "" {
		p = ModulePath(module.Type)
	}

	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", p, err)
	}

	var words []models.WordRecord
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", p, err)
	}

	for i := range words {
		words[i].Normalize()
	}
	return words, nil
}
