package apispec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/quortexio/unimcp/pkg/logger"
)

// Domain errors, checked with errors.Is. Both are startup-time configuration
// errors: server construction aborts on either.
var (
	// ErrSpecDirNotFound indicates the spec directory does not exist.
	ErrSpecDirNotFound = errors.New("API spec directory not found")

	// ErrNoSpecs indicates the spec directory contains no spec files.
	ErrNoSpecs = errors.New("no API spec files found")
)

// specExtensions are the file extensions recognized as OpenAPI documents.
var specExtensions = []string{".yaml", ".yml"}

// LoadDir reads every spec file in dir into a Document.
//
// Files are processed in lexicographic filename order so that merge collision
// resolution is deterministic across platforms. A missing directory or an
// empty one fails fast; a malformed file propagates its parse error.
func LoadDir(dir string) ([]Document, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSpecDirNotFound, dir)
	}

	var files []string
	for _, ext := range specExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSpecs, dir)
	}
	sort.Strings(files)

	logger.Infof("Found %d API specs in %s", len(files), dir)

	docs := make([]Document, 0, len(files))
	for _, file := range files {
		logger.Infof("Loading %s...", filepath.Base(file))
		doc, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// Decode into a plain map: decoding into the named Document type would
	// make yaml.v3 type nested mappings as Document too, breaking the
	// map[string]any assertions the accessors and merger rely on.
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return Document(doc), nil
}
