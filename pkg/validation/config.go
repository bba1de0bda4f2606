package validation

// ConfigRequestValidator validates provider configuration writes
type ConfigRequestValidator struct{}

// NewConfigRequestValidator creates a new ConfigRequestValidator
func NewConfigRequestValidator() *ConfigRequestValidator {
	return &ConfigRequestValidator{}
}

// ValidateCreate requires the OpenRouter key on first save
func (v *ConfigRequestValidator) ValidateCreate(apiKey string) error {
	if apiKey == "" {
		return newError("api_key_openrouter", "API Key é obrigatória")
	}
	return nil
}

// ValidateUpdate requires the id of the row being updated
func (v *ConfigRequestValidator) ValidateUpdate(id int64) error {
	if id == 0 {
		return newError("id", "ID é obrigatório")
	}
	return nil
}
