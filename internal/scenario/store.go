package scenario

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

const fileExt = ".yaml"

// Load reads a scenario document from any URL afs understands (file://, mem://, plain paths).
func Load(ctx context.Context, URL string) (*Scenario, error) {
	return load(ctx, afs.New(), URL)
}

func Save(ctx context.Context, URL string, sc *Scenario) error {
	return save(ctx, afs.New(), URL, sc)
}

func load(ctx context.Context, fs afs.Service, URL string) (*Scenario, error) {
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check scenario %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("scenario not found: %s", URL)
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", URL, err)
	}
	return Decode(data)
}

func save(ctx context.Context, fs afs.Service, URL string, sc *Scenario) error {
	if sc == nil {
		return fmt.Errorf("cannot save nil scenario")
	}
	data, err := Encode(sc)
	if err != nil {
		return fmt.Errorf("failed to encode scenario %q: %w", sc.Name, err)
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save scenario to %s: %w", URL, err)
	}
	return nil
}

// Store keeps named scenarios as <name>.yaml under a base URL.
type Store struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

func NewStore(ctx context.Context, basePath string) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create scenario directory: %w", err)
		}
	}
	return &Store{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fs,
	}, nil
}

func (s *Store) path(name string) string {
	return url.Join(s.basePath, name+fileExt)
}

func (s *Store) Save(ctx context.Context, sc *Scenario) error {
	if sc == nil || sc.Name == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(ctx, s.fs, s.path(sc.Name), sc)
}

func (s *Store) Load(ctx context.Context, name string) (*Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return load(ctx, s.fs, s.path(name))
}

func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.path(name)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check scenario %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("scenario not found: %s", name)
	}
	return s.fs.Delete(ctx, URL)
}

// List returns the names of stored scenarios.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	var names []string
	for _, obj := range objects {
		if obj.IsDir() || !strings.HasSuffix(obj.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(path.Base(obj.Name()), fileExt))
	}
	return names, nil
}
