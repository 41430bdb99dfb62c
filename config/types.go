package config

// DatabaseConfig locates the SQLite database holding loaded feed tables.
type DatabaseConfig struct {
	Path      string `yaml:"path" validate:"required"`
	Namespace string `yaml:"namespace" validate:"omitempty"`
}

// ValidationConfig tunes one validation run.
type ValidationConfig struct {
	// BatchSize is how many findings the error store buffers per write;
	// 0 selects the default (500).
	BatchSize int `yaml:"batchSize" validate:"gte=0"`
	// StoreMode is "create" (fresh error tables) or "reconnect" (resume
	// identities after a previous run against the same feed).
	StoreMode string `yaml:"storeMode" validate:"omitempty,oneof=create reconnect"`
	// SkipFlex disables the flex rule engine. The engine is a no-op on
	// feeds without flex tables either way.
	SkipFlex bool `yaml:"skipFlex"`
	// SkipPatterns disables pattern inference.
	SkipPatterns bool `yaml:"skipPatterns"`
}

// NamedFeed selects one loaded feed inside a shared database.
type NamedFeed struct {
	Name      string `yaml:"name" validate:"required"`
	Namespace string `yaml:"namespace" validate:"required"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Database   DatabaseConfig   `yaml:"database" validate:"required"`
	Validation ValidationConfig `yaml:"validation"`
	Feeds      []NamedFeed      `yaml:"feeds"`
}
