package backend

import (
	"fmt"

	"expensetracker/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	local := LocalType(appConfig.LocalBackend)
	if !local.IsValid() {
		return Config{}, fmt.Errorf("invalid local backend in config: %s", appConfig.LocalBackend)
	}
	return Config{
		Local:            local,
		LocalDBPath:      appConfig.LocalDBPath,
		CloudDatabaseURL: appConfig.CloudDatabaseURL,
		CloudMigrate:     appConfig.CloudMigrate,
	}, nil
}

func (c Config) Validate() error {
	if !c.Local.IsValid() {
		return fmt.Errorf("invalid local backend: %s", c.Local)
	}
	if c.Local == SQLiteLocal && c.LocalDBPath == "" {
		return fmt.Errorf("local database path is required for sqlite backend")
	}
	return nil
}
