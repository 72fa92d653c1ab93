package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSystemReadsAndTrimsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system_prompt.txt")
	if err := os.WriteFile(path, []byte("  answer briefly \n\n"), 0o644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	got, err := LoadSystem(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "answer briefly" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestLoadSystemMissingFileFallsBackToDefault(t *testing.T) {
	got, err := LoadSystem(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DefaultSystem {
		t.Fatalf("expected default prompt, got %q", got)
	}
}

func TestLoadSystemEmptyFileFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system_prompt.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	got, err := LoadSystem(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DefaultSystem {
		t.Fatalf("expected default prompt, got %q", got)
	}
}

func TestLoadSystemEmptyPathUsesDefault(t *testing.T) {
	got, err := LoadSystem("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DefaultSystem {
		t.Fatalf("expected default prompt, got %q", got)
	}
}

func TestLoadSystemUnreadablePathIsAnError(t *testing.T) {
	// A directory is readable as a path but not as a file
	if _, err := LoadSystem(t.TempDir()); err == nil {
		t.Fatalf("expected error when prompt path is a directory")
	}
}

func TestLoadModuleReadsStagePrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ModuleFormalizer+".txt")
	if err := os.WriteFile(path, []byte(" convert to clauses \n"), 0o644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	got, err := LoadModule(dir, ModuleFormalizer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "convert to clauses" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestLoadModuleMissingFileIsAnError(t *testing.T) {
	// Stage prompts have no built-in default
	if _, err := LoadModule(t.TempDir(), ModuleExplainer); err == nil {
		t.Fatalf("expected error for a missing stage prompt")
	}
}

func TestLoadModuleEmptyFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ModuleExplainer+".txt")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	if _, err := LoadModule(dir, ModuleExplainer); err == nil {
		t.Fatalf("expected error for an empty stage prompt")
	}
}
