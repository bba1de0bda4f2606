package config

import (
	"encoding/json"
	"os"
)

// DefaultModel is used whenever the stored configuration names no model
const DefaultModel = "gpt-3.5-turbo"

// Model represents a selectable completion model
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// ModelsConfig holds the models offered to the operator
type ModelsConfig struct {
	models []Model
}

var builtinModels = []Model{
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Provider: "OpenAI"},
	{ID: "gpt-4", Name: "GPT-4", Provider: "OpenAI"},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Provider: "OpenAI"},
	{ID: "claude-3-opus", Name: "Claude 3 Opus", Provider: "Anthropic"},
	{ID: "claude-3-sonnet", Name: "Claude 3 Sonnet", Provider: "Anthropic"},
	{ID: "meta-llama/llama-2-70b", Name: "Llama 2 70B", Provider: "Meta"},
}

// NewModelsConfig creates a new models configuration from a file
func NewModelsConfig(configPath string) (*ModelsConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var models []Model
	err = json.Unmarshal(data, &models)
	if err != nil {
		return nil, err
	}

	return &ModelsConfig{models: models}, nil
}

// LoadModelsConfig reads the catalog from configPath, or returns the
// built-in catalog when no path is given
func LoadModelsConfig(configPath string) (*ModelsConfig, error) {
	if configPath == "" {
		return DefaultModelsConfig(), nil
	}
	return NewModelsConfig(configPath)
}

// DefaultModelsConfig returns the built-in catalog
func DefaultModelsConfig() *ModelsConfig {
	models := make([]Model, len(builtinModels))
	copy(models, builtinModels)
	return &ModelsConfig{models: models}
}

// GetAvailableModels returns the list of available models
func (mc *ModelsConfig) GetAvailableModels() []Model {
	if mc == nil {
		return nil
	}
	return mc.models
}

// GetDefaultModel returns DefaultModel. The fallback does not follow the
// catalog, so a custom MODELS_CONFIG_PATH never changes it.
func (mc *ModelsConfig) GetDefaultModel() string {
	return DefaultModel
}
