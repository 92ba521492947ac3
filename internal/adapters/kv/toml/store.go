package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	DurablePathKey  = "storage.durable_path"
	storageFileMode = 0o600
	storageDirMode  = 0o700
	storageDir      = ".tracetrade"
	storageFile     = "storage.toml"
	tempFilePattern = ".storage-*.toml.tmp"
	// quarantineSuffix names the copy of an undecodable document kept for inspection.
	quarantineSuffix = ".corrupt"
)

// Store is the durable key space, persisted as a versioned TOML document that is
// replaced atomically on every write.
type Store struct {
	path string
	mu   *sync.RWMutex
	now  func() time.Time
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.KeyValueStore = (*Store)(nil)

var errEmptyKey = errors.New("storage key is empty")

func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(DurablePathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, storageDir, storageFile)
	}

	return NewStoreAt(path)
}

func NewStoreAt(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Store{path: absPath, mu: lockForPath(absPath), now: time.Now}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", errEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return "", err
	}

	if i := file.index(key); i >= 0 {
		return file.Entries[i].Value, nil
	}

	return "", fmt.Errorf("durable key %q: %w", key, domain.ErrKeyNotFound)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}

	entry := entrySchema{Key: key, Value: value, UpdatedAt: s.now().UTC().Format(time.RFC3339)}
	if i := file.index(key); i >= 0 {
		file.Entries[i] = entry
	} else {
		file.Entries = append(file.Entries, entry)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.writeSchema(file)
}

// Delete removes key. An undecodable document is moved aside, since no key can be
// read from it again.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if errors.Is(err, domain.ErrStorageCorrupt) {
		return s.quarantine()
	}
	if err != nil {
		return err
	}

	i := file.index(key)
	if i < 0 {
		return nil
	}
	file.Entries = append(file.Entries[:i], file.Entries[i+1:]...)

	return s.writeSchema(file)
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(file.Entries))
	for _, entry := range file.Entries {
		keys = append(keys, entry.Key)
	}
	sort.Strings(keys)

	return keys, nil
}

func (s *Store) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read storage file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode storage file: %w: %w", domain.ErrStorageCorrupt, err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, fmt.Errorf("%w: %w", domain.ErrStorageCorrupt, err)
	}
	file.applyDefaults()

	return file, nil
}

func (s *Store) quarantine() error {
	if err := os.Rename(s.path, s.path+quarantineSuffix); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("quarantine storage file: %w", err)
	}
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (s *Store) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.path), storageDirMode); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp storage file: %w", err)
	}

	if err := tempFile.Chmod(storageFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp storage file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp storage file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}

	cleanup = false
	return nil
}
