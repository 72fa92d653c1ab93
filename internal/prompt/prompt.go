package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tahcohcat/tgrelay/internal/logger"
)

// Pipeline stage names; each loads its prompt from <dir>/<module>.txt.
const (
	ModuleFormalizer = "formalizer"
	ModuleExplainer  = "explainer"
)

// DefaultSystem is used when no prompt file is deployed next to the binary.
const DefaultSystem = "You are a helpful assistant. " +
	"Give concise and clear answers."

// LoadSystem reads the system prompt once at startup. A missing file is not
// an error: the built-in default keeps the bot usable out of the box. Any
// other read failure is a configuration problem and aborts startup.
func LoadSystem(path string) (string, error) {
	if path == "" {
		return DefaultSystem, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.New().Warn(fmt.Sprintf("system prompt file %s not found, using built-in default", path))
			return DefaultSystem, nil
		}
		return "", fmt.Errorf("failed to read system prompt %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		logger.New().Warn(fmt.Sprintf("system prompt file %s is empty, using built-in default", path))
		return DefaultSystem, nil
	}

	return text, nil
}

// LoadModule reads the prompt for one pipeline stage. Unlike the system
// prompt there is no built-in fallback: stage prompts define the text format
// the stages exchange, so a missing or empty file aborts startup.
func LoadModule(dir, module string) (string, error) {
	path := filepath.Join(dir, module+".txt")

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt for module %q: %w", module, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("prompt file %s for module %q is empty", path, module)
	}

	return text, nil
}
