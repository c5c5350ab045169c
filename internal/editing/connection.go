package editing

import (
	"context"
	"fmt"
	"net/url"

	"github.com/debemdeboas/editorial/internal/extension"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/util"
)

// ConnectService stores the service URL with a fresh token and registers the
// event with the service. The settings are cleared again if that fails.
func (s *Service) ConnectService(ctx context.Context, event model.EventID, serviceURL string) (*model.EditingSettings, error) {
	u, err := url.Parse(serviceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalidInput("invalid service URL %q", serviceURL)
	}

	current, err := s.settings(ctx, event)
	if err != nil {
		return nil, err
	}
	if current.ServiceConnected() {
		return nil, ErrServiceAlreadyConnected
	}

	settings := &model.EditingSettings{
		EventID:           event,
		ServiceURL:        serviceURL,
		ServiceToken:      util.NewToken(),
		ServiceIdentifier: "editorial-" + string(event),
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	if err := s.ext.NotifyEnabled(ctx, settings); err != nil {
		editingLogger.Error().Err(err).Str("event_id", string(event)).Msg("Editing service connection failed, rolling back")
		if rbErr := s.repo.SaveSettings(ctx, &model.EditingSettings{EventID: event}); rbErr != nil {
			editingLogger.Error().Err(rbErr).Str("event_id", string(event)).Msg("Error clearing editing settings")
		}
		return nil, fmt.Errorf("connect service: %w", err)
	}

	editingLogger.Info().Str("event_id", string(event)).Str("url", serviceURL).Msg("Editing service connected")
	return settings, nil
}

// DisconnectService forgets the service. The service is told first but its
// answer does not matter.
func (s *Service) DisconnectService(ctx context.Context, event model.EventID) error {
	settings, err := s.settings(ctx, event)
	if err != nil {
		return err
	}
	if !settings.ServiceConnected() {
		return ErrServiceNotConnected
	}

	if err := s.ext.NotifyDisconnected(ctx, settings); err != nil {
		editingLogger.Warn().Err(err).Str("event_id", string(event)).Msg("Editing service disconnect notification failed")
	}

	return s.repo.SaveSettings(ctx, &model.EditingSettings{EventID: event})
}

func (s *Service) ServiceStatus(ctx context.Context, event model.EventID) (*extension.StatusResponse, error) {
	settings, err := s.settings(ctx, event)
	if err != nil {
		return nil, err
	}
	if !settings.ServiceConnected() {
		return nil, ErrServiceNotConnected
	}
	return s.ext.Status(ctx, settings)
}

// Authenticate reports whether token is the service token of event.
func (s *Service) Authenticate(ctx context.Context, event model.EventID, token string) bool {
	settings, err := s.settings(ctx, event)
	if err != nil || !settings.ServiceConnected() {
		return false
	}
	return util.ConstantTimeEqual(settings.ServiceToken, token)
}
