package backend

import (
	"fmt"

	"costmanager/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	if appConfig.DBVersion < 0 {
		return Config{}, fmt.Errorf("invalid db version in config: %d", appConfig.DBVersion)
	}

	return Config{
		Type:         backendType,
		DBDir:        appConfig.DBDir,
		DBName:       appConfig.DBName,
		DBVersion:    uint(appConfig.DBVersion),
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.DBName == "" {
			return fmt.Errorf("database name is required for sqlite backend")
		}
		if c.DBVersion == 0 {
			return fmt.Errorf("database version must be positive for sqlite backend")
		}
		// AMQP is optional, so we don't validate it
	case MemoryBackend:
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
