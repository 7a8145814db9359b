package config

// Config represents the full client configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Task service connection
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Local preference store
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// Task list behaviour
	Tasks TasksConfig `yaml:"tasks" mapstructure:"tasks"`
}

// ServerConfig locates the task service
type ServerConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// StoreConfig locates the preference database
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// TasksConfig configures the task list
type TasksConfig struct {
	DefaultView string `yaml:"default_view" mapstructure:"default_view"`
}
