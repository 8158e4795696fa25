package inmemory

import (
	"sync"

	"kgeyst.com/iris/pkg/iris/domain"
)

type ProviderConfigRepository struct {
	mutex  sync.Mutex
	config domain.ProviderConfig
}

func NewProviderConfigRepository(initial domain.ProviderConfig) *ProviderConfigRepository {
	if initial.Provider == "" {
		initial.Provider = domain.DefaultProvider
	}
	return &ProviderConfigRepository{
		config: initial,
	}
}

func (p *ProviderConfigRepository) Load() (domain.ProviderConfig, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.config, nil
}

func (p *ProviderConfigRepository) Save(config domain.ProviderConfig) error {
	if config.Provider == "" {
		config.Provider = domain.DefaultProvider
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.config = config
	return nil
}
