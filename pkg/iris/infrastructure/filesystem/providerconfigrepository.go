package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/apex/log"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"kgeyst.com/iris/pkg/iris/domain"
)

type yamlProviderConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"apiKey"`
}

// ProviderConfigRepository persists the provider settings as a YAML file, so that they survive restarts. Reads are
// served by the wrapped (in-memory) repository. Edits made to the file by hand are picked up while Watch runs.
type ProviderConfigRepository struct {
	mutex   sync.Mutex
	wrapped domain.ProviderConfigRepository
	path    string
	watcher *fsnotify.Watcher
	logger  log.Interface
}

// NewProviderConfigRepository loads the file at `path` into `wrapped`. A missing file is fine: `wrapped` keeps what
// it has (for example, settings seeded from the environment) until the first Save.
func NewProviderConfigRepository(
	wrapped domain.ProviderConfigRepository,
	path string,
	logger log.Interface,
) (*ProviderConfigRepository, error) {
	r := &ProviderConfigRepository{
		wrapped: wrapped,
		path:    path,
		logger:  logger.WithField("path", path),
	}
	err := r.reload()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return r, nil
}

func (r *ProviderConfigRepository) Load() (domain.ProviderConfig, error) {
	return r.wrapped.Load()
}

func (r *ProviderConfigRepository) Save(config domain.ProviderConfig) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	data, err := yaml.Marshal(yamlProviderConfig{
		Provider: string(config.Provider),
		APIKey:   config.Credential,
	})
	if err != nil {
		return err
	}
	// Written to a temporary file first, so that a crash never leaves half-written settings behind.
	tempPath := r.path + ".tmp"
	err = os.WriteFile(tempPath, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	err = os.Rename(tempPath, r.path)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return r.wrapped.Save(config)
}

// Watch starts watching the settings file for changes. The directory is watched rather than the file itself,
// because editors (and Save) replace the file instead of writing to it.
func (r *ProviderConfigRepository) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	err = watcher.Add(filepath.Dir(r.path))
	if err != nil {
		_ = watcher.Close()
		return err
	}
	r.mutex.Lock()
	r.watcher = watcher
	r.mutex.Unlock()
	go r.watch(watcher)
	return nil
}

func (r *ProviderConfigRepository) Close() error {
	r.mutex.Lock()
	watcher := r.watcher
	r.watcher = nil
	r.mutex.Unlock()
	if watcher == nil {
		return nil
	}
	return watcher.Close()
}

func (r *ProviderConfigRepository) watch(watcher *fsnotify.Watcher) {
	cleanPath := filepath.Clean(r.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cleanPath || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			r.mutex.Lock()
			err := r.reload()
			r.mutex.Unlock()
			if err != nil {
				r.logger.WithError(err).Warn("failed to reload settings")
				continue
			}
			r.logger.Info("settings reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.WithError(err).Warn("settings watcher failed")
		}
	}
}

func (r *ProviderConfigRepository) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}
	// Editors truncate before writing; the following write event brings the content.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var stored yamlProviderConfig
	err = yaml.Unmarshal(data, &stored)
	if err != nil {
		return fmt.Errorf("malformed settings file: %w", err)
	}
	provider, err := domain.ParseProvider(stored.Provider)
	if err != nil {
		return err
	}
	return r.wrapped.Save(domain.ProviderConfig{
		Provider:   provider,
		Credential: stored.APIKey,
	})
}
