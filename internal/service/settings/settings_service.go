package settings

import (
	"chat-rag/internal/config"
	"chat-rag/internal/logger"
	"chat-rag/internal/prompt"
	"chat-rag/internal/repository/db"
	"chat-rag/pkg/validation"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotConfigured means no configuration row exists yet
	ErrNotConfigured = errors.New("Configurações não encontradas")
	// ErrMissingAPIKey means the active configuration has no OpenRouter key
	ErrMissingAPIKey = errors.New("API Key não configurada")
)

// IsNotConfigured reports whether err is one of the "not configured" errors
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrMissingAPIKey)
}

// CreateInput is the payload of a first save
type CreateInput struct {
	APIKeyOpenRouter string
	SelectedModel    string
	SystemPrompt     string
}

// UpdateInput patches an existing row; nil fields are left untouched
type UpdateInput struct {
	ID               int64
	APIKeyOpenRouter *string
	SelectedModel    *string
	SystemPrompt     *string
}

// SettingsService reads and writes the operator's provider configuration
type SettingsService struct {
	store     db.Store
	validator *validation.ConfigRequestValidator
	now       func() time.Time
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(store db.Store) *SettingsService {
	return &SettingsService{
		store:     store,
		validator: validation.NewConfigRequestValidator(),
		now:       time.Now,
	}
}

var latestConfig = db.QueryOptions{
	Order: &db.Order{Column: "created_at", Ascending: false},
	Limit: 1,
}

// Latest returns the most recent configuration row, or an empty slice
func (s *SettingsService) Latest(ctx context.Context) ([]db.Config, error) {
	records, err := s.store.Select(ctx, db.TableConfigs, latestConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	configs := make([]db.Config, 0, len(records))
	for _, record := range records {
		configs = append(configs, db.ConfigFromRecord(record))
	}
	return configs, nil
}

// Active returns the configuration consulted by completions. It fails with
// ErrNotConfigured when no row exists and ErrMissingAPIKey when the key is empty.
func (s *SettingsService) Active(ctx context.Context) (*db.Config, error) {
	configs, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, ErrNotConfigured
	}

	active := configs[0]
	if active.APIKeyOpenRouter == "" {
		return nil, ErrMissingAPIKey
	}
	return &active, nil
}

// Create inserts a new configuration row, filling model and prompt defaults
func (s *SettingsService) Create(ctx context.Context, in CreateInput) (*db.Config, error) {
	if err := s.validator.ValidateCreate(in.APIKeyOpenRouter); err != nil {
		return nil, err
	}

	model := in.SelectedModel
	if model == "" {
		model = config.DefaultModel
	}
	systemPrompt := in.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = prompt.DefaultSystemPrompt
	}

	record, err := s.store.Insert(ctx, db.TableConfigs, db.Record{
		"api_key_openrouter": in.APIKeyOpenRouter,
		"selected_model":     model,
		"system_prompt":      systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	created := db.ConfigFromRecord(record)
	logger.Log.WithFields(logrus.Fields{"config_id": created.ID, "model": created.SelectedModel}).Info("Created configuration")
	return &created, nil
}

// Update patches the row with in.ID and refreshes updated_at. It returns
// nil without error when no row matched.
func (s *SettingsService) Update(ctx context.Context, in UpdateInput) (*db.Config, error) {
	if err := s.validator.ValidateUpdate(in.ID); err != nil {
		return nil, err
	}

	patch := db.Record{"updated_at": s.now().UTC()}
	if in.APIKeyOpenRouter != nil {
		patch["api_key_openrouter"] = *in.APIKeyOpenRouter
	}
	if in.SelectedModel != nil {
		patch["selected_model"] = *in.SelectedModel
	}
	if in.SystemPrompt != nil {
		patch["system_prompt"] = *in.SystemPrompt
	}

	records, err := s.store.Update(ctx, db.TableConfigs, patch, []db.Filter{db.Eq("id", in.ID)})
	if err != nil {
		return nil, fmt.Errorf("failed to update configuration: %w", err)
	}
	if len(records) == 0 {
		logger.Log.WithField("config_id", in.ID).Warn("Configuration update matched no row")
		return nil, nil
	}

	updated := db.ConfigFromRecord(records[0])
	logger.Log.WithFields(logrus.Fields{"config_id": updated.ID, "model": updated.SelectedModel}).Info("Updated configuration")
	return &updated, nil
}
