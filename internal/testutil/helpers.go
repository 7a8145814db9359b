// Package testutil provides reusable test utilities for the tasks client.
package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestEnv provides access to isolated test directories
type TestEnv struct {
	Home         string // Mocked HOME directory
	ProjectDir   string // Test project directory
	GlobalDir    string // ~/.tasks equivalent
	ProjectTasks string // .tasks in project
	t            *testing.T
}

// SetupTestEnv creates an isolated test environment with mocked HOME.
// Uses t.TempDir() for automatic cleanup and t.Setenv() for automatic env restoration.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpHome := t.TempDir()
	tmpProject := t.TempDir()

	globalDir := filepath.Join(tmpHome, ".tasks")
	projectTasks := filepath.Join(tmpProject, ".tasks")

	for _, dir := range []string{globalDir, projectTasks} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", tmpHome)
	t.Setenv("TASKS_SERVER", "")
	t.Setenv("TASKS_STORE", "")

	return &TestEnv{
		Home:         tmpHome,
		ProjectDir:   tmpProject,
		GlobalDir:    globalDir,
		ProjectTasks: projectTasks,
		t:            t,
	}
}

// CreateFile creates a file with the given content in the test environment.
// Relative paths are resolved against the project directory.
func (e *TestEnv) CreateFile(path, content string) {
	e.t.Helper()

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(e.ProjectDir, path)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		e.t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
}

// CreateGlobalFile creates a file relative to the global .tasks directory.
func (e *TestEnv) CreateGlobalFile(relPath, content string) {
	e.t.Helper()
	e.CreateFile(filepath.Join(e.GlobalDir, relPath), content)
}

// FileExists checks if a file exists in the test environment.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(e.ProjectDir, path)
	}
	_, err := os.Stat(fullPath)
	return err == nil
}

// Chdir switches into the project directory until the test ends
func (e *TestEnv) Chdir() {
	e.t.Helper()
	e.t.Chdir(e.ProjectDir)
}

// ErrStoreDown is returned by FailingStore
var ErrStoreDown = errors.New("store unavailable")

// FailingStore is a prefs.Store whose every call fails
type FailingStore struct{}

func (FailingStore) Get(context.Context, string) (string, error) { return "", ErrStoreDown }
func (FailingStore) Set(context.Context, string, string) error   { return ErrStoreDown }
func (FailingStore) Delete(context.Context, string) error        { return ErrStoreDown }
