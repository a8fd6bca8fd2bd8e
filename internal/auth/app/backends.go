package app

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/tokengate/internal/auth/backend"
	"github.com/aussiebroadwan/tokengate/internal/auth/backend/assertion"
	"github.com/aussiebroadwan/tokengate/internal/auth/backend/stock"
	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"gopkg.in/yaml.v3"
)

// BackendsFile is the layout of AUTH_BACKENDS_FILE.
type BackendsFile struct {
	Backends struct {
		Stock     StockConfig     `yaml:"stock"`
		Assertion AssertionConfig `yaml:"assertion"`
	} `yaml:"backends"`
}

type StockConfig struct {
	Enabled   bool     `yaml:"enabled"`
	UsersFile string   `yaml:"users_file"`
	ACLs      []string `yaml:"acls"`
}

type AssertionConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Provider assertion.Config `yaml:",inline"`
	ACLs     []string         `yaml:"acls"`
}

// LoadBackends builds a registry holding every enabled backend of the file at
// path. Each backend's acls become its policy.
func LoadBackends(path string) (*backend.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backends file: %w", err)
	}

	var file BackendsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse backends file: %w", err)
	}

	reg := backend.NewRegistry()

	if cfg := file.Backends.Stock; cfg.Enabled {
		b, err := stock.LoadFile(cfg.UsersFile)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(b, cfg.ACLs...); err != nil {
			return nil, err
		}
	}

	if cfg := file.Backends.Assertion; cfg.Enabled {
		b, err := assertion.New(cfg.Provider)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(b, cfg.ACLs...); err != nil {
			return nil, err
		}
	}

	if len(reg.Names()) == 0 {
		return nil, fmt.Errorf("no backend enabled in %s", path)
	}
	return reg, nil
}

type tenantSeed struct {
	Tenants []domain.Tenant `yaml:"tenants"`
}

// LoadTenantSeed reads the tenants of AUTH_TENANTS_FILE.
func LoadTenantSeed(path string) ([]domain.Tenant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}

	var seed tenantSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse tenants file: %w", err)
	}

	for i, t := range seed.Tenants {
		if t.UUID == "" {
			return nil, fmt.Errorf("tenants file: entry %d has no uuid", i)
		}
	}
	return seed.Tenants, nil
}
