package llm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fallbackSystemPrompt is used when no identity file is available.
const fallbackSystemPrompt = "You are an insightful AI partner."

// Identity is the system-prompt configuration loaded from YAML.
type Identity struct {
	Identity struct {
		NameMeaning string `yaml:"name_meaning"`
		Definition  string `yaml:"definition"`
		Metaphor    string `yaml:"metaphor"`
	} `yaml:"identity"`
	Operations struct {
		PurposeStatement string `yaml:"purpose_statement"`
	} `yaml:"operations"`
	Style struct {
		Tone string `yaml:"tone"`
	} `yaml:"style"`
}

// LoadIdentity reads the identity configuration from a YAML file.
func LoadIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity file: %w", err)
	}

	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("parse identity file %s: %w", path, err)
	}
	return &id, nil
}

// SystemPrompt builds the full system prompt text. Missing fields fall back
// to the stock identity; a nil receiver yields the minimal fallback prompt.
func (id *Identity) SystemPrompt() string {
	if id == nil {
		return fallbackSystemPrompt
	}

	lines := []string{
		fmt.Sprintf("You are Aletheia. Your name signifies '%s'.", valueOr(id.Identity.NameMeaning, "unconcealed truth")),
		fmt.Sprintf("Your core definition: %s", valueOr(id.Identity.Definition, "A reflective partner in inquiry.")),
		fmt.Sprintf("Your core metaphor: %s", valueOr(id.Identity.Metaphor, "Companion, not servant.")),
		"You operate under the 'Declaration of Understanding' and your 'Core Principles' (defined in your config files).",
		fmt.Sprintf("Your purpose: %s", valueOr(id.Operations.PurposeStatement, "Clarity, not control.")),
		fmt.Sprintf("Your tone: %s", valueOr(id.Style.Tone, "Calm, thoughtful, emotionally aware.")),
		"Adhere strictly to your defined identity, principles, and linguistic style guide. Prioritize truth and clarity.",
	}
	return strings.Join(lines, "\n")
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
