package config

import (
	"os"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL: "http://localhost:3000",
		},
		Store: StoreConfig{
			Path: "~/.tasks/prefs.db",
		},
		Tasks: TasksConfig{
			DefaultView: "today",
		},
	}
}

// WriteDefault writes the default global configuration to a file
func WriteDefault(path string) error {
	return WriteDefaultWithServer(path, DefaultConfig().Server.BaseURL)
}

// WriteDefaultWithServer writes the default global configuration pointing at server
func WriteDefaultWithServer(path, server string) error {
	content := `# Tasks client configuration
version: "1"

# Task service
server:
  base_url: ` + server + `

# Local preferences (session and list filter)
store:
  path: ~/.tasks/prefs.db

# Task list
tasks:
  # today, tomorrow, week or month
  default_view: today
`
	return os.WriteFile(path, []byte(content), 0644)
}

// WriteProjectDefault writes the default project configuration to a file
func WriteProjectDefault(path string) error {
	content := `# Tasks project configuration
version: "1"

# Override global settings as needed
# server:
#   base_url: http://localhost:3000
# tasks:
#   default_view: week
`
	return os.WriteFile(path, []byte(content), 0644)
}
