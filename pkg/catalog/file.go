package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a catalog file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported catalog file %q", path)
}

// document is the on-disk shape shared by every format.
type document struct {
	Tools []domain.Tool `json:"tools" yaml:"tools" toml:"tools"`
}

func decode(r io.Reader, format Format) (*Memory, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("decode toml catalog: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode toml catalog: unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return NewMemory(doc.Tools...)
}

// File is a catalog backed by a YAML, JSON or TOML file.
// Reload swaps the content atomically; a failed reload keeps the previous content.
type File struct {
	path   string
	format Format
	logger *slog.Logger

	mu  sync.RWMutex
	mem *Memory
}

// FileOption configures a File catalog.
type FileOption func(*File)

// WithLogger sets a structured logger for reload and watch events.
func WithLogger(logger *slog.Logger) FileOption {
	return func(f *File) {
		f.logger = logger
	}
}

// NewFile loads the catalog at path. The format follows the extension.
func NewFile(path string, opts ...FileOption) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f := &File{path: path, format: format, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the file the catalog reads.
func (f *File) Path() string { return f.path }

// Reload re-reads the file.
func (f *File) Reload() error {
	fh, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer fh.Close()

	mem, err := decode(fh, f.format)
	if err != nil {
		return fmt.Errorf("%s: %w", f.path, err)
	}

	f.mu.Lock()
	f.mem = mem
	f.mu.Unlock()
	return nil
}

func (f *File) current() *Memory {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mem
}

func (f *File) List(ctx context.Context) ([]domain.Tool, error) {
	return f.current().List(ctx)
}

func (f *File) Get(ctx context.Context, id string) (domain.Tool, error) {
	return f.current().Get(ctx, id)
}

// Watch reloads the catalog whenever the file changes and signals each
// successful reload. The channel is closed when ctx is done.
//
// The parent directory is watched so editors that replace the file by rename
// are still picked up.
func (f *File) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", f.path, err)
	}

	target := filepath.Clean(f.path)
	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := f.Reload(); err != nil {
					f.logger.Warn("catalog reload failed", "path", f.path, "error", err)
					continue
				}
				f.logger.Info("catalog reloaded", "path", f.path)
				select {
				case ch <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Error("catalog watcher error", "error", err)
			}
		}
	}()

	return ch, nil
}
