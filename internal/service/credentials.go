package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/lib/instagram"
	"github.com/deppfellow/sovyx-backend/internal/lib/metrics"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/deppfellow/sovyx-backend/internal/repository"
	"github.com/deppfellow/sovyx-backend/internal/sqlerr"
	"github.com/rs/zerolog"
)

// CredentialService maps a client name to the Graph API token it publishes with.
// The set of tenants is fixed by configuration; the store only holds tokens.
type CredentialService struct {
	cfg    *config.Config
	store  repository.CredentialStore
	graph  *instagram.Client
	logger *zerolog.Logger
}

func NewCredentialService(cfg *config.Config, store repository.CredentialStore, graph *instagram.Client, logger *zerolog.Logger) *CredentialService {
	return &CredentialService{
		cfg:    cfg,
		store:  store,
		graph:  graph,
		logger: logger,
	}
}

func invalidClientError() *errs.HTTPError {
	return errs.NewBadRequestError("invalid client", true, nil, nil, nil)
}

func incompleteCredentialError(client string) *errs.HTTPError {
	return errs.NewBadRequestError(fmt.Sprintf("access token or user id not configured for %s", client), true, nil, nil, nil)
}

// Resolve returns the current credential of client. An empty client means
// the owner. The returned credential may lack a token or user id.
func (s *CredentialService) Resolve(ctx context.Context, client string) (model.Credential, error) {
	if client == "" {
		client = config.OwnerTenant
	}

	configured, ok := s.cfg.TenantCredentials(client)
	if !ok {
		return model.Credential{}, invalidClientError()
	}

	cred, err := s.store.Get(ctx, client)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		// Not seeded yet; configuration is the source of truth.
		return model.Credential{
			Tenant:      client,
			AccessToken: configured.AccessToken,
			UserID:      configured.UserID,
		}, nil
	}
	if err != nil {
		return model.Credential{}, sqlerr.HandleError(err)
	}

	return cred, nil
}

// ResolveComplete is Resolve for operations that need both token and user id.
func (s *CredentialService) ResolveComplete(ctx context.Context, client string) (model.Credential, error) {
	cred, err := s.Resolve(ctx, client)
	if err != nil {
		return model.Credential{}, err
	}
	if !cred.Complete() {
		return model.Credential{}, incompleteCredentialError(cred.Tenant)
	}
	return cred, nil
}

// Seed writes every configured tenant into the store.
func (s *CredentialService) Seed(ctx context.Context) error {
	for _, name := range s.cfg.TenantNames() {
		configured, _ := s.cfg.TenantCredentials(name)

		cred := model.Credential{
			Tenant:      name,
			AccessToken: configured.AccessToken,
			UserID:      configured.UserID,
		}
		if !cred.Complete() {
			s.logger.Warn().
				Str("tenant", name).
				Bool("has_token", cred.AccessToken != "").
				Bool("has_user_id", cred.UserID != "").
				Msg("tenant credentials incomplete")
		}

		if err := s.store.Seed(ctx, cred); err != nil {
			return fmt.Errorf("seed credentials for %s: %w", name, err)
		}
	}

	s.logger.Info().Strs("tenants", s.cfg.TenantNames()).Msg("tenant credentials seeded")
	return nil
}

// Refresh exchanges the tenant's long-lived token for a new one. The Graph
// payload is returned untouched; the store is only updated when it carries
// an access_token.
func (s *CredentialService) Refresh(ctx context.Context, client string) (model.GraphPayload, error) {
	payload, _, err := s.refresh(ctx, client)
	return payload, err
}

func (s *CredentialService) refresh(ctx context.Context, client string) (model.GraphPayload, bool, error) {
	cred, err := s.Resolve(ctx, client)
	if err != nil {
		return nil, false, err
	}
	if cred.AccessToken == "" {
		return nil, false, errs.NewBadRequestError(fmt.Sprintf("access token not configured for %s", cred.Tenant), true, nil, nil, nil)
	}

	payload, err := s.graph.RefreshToken(ctx, cred.AccessToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues(cred.Tenant, "error").Inc()
		s.logger.Error().Err(err).Str("tenant", cred.Tenant).Msg("token refresh request failed")
		return nil, false, errs.NewUpstreamError("failed to refresh token")
	}

	token, _ := payload["access_token"].(string)
	if token == "" {
		metrics.TokenRefreshes.WithLabelValues(cred.Tenant, "rejected").Inc()
		s.logger.Warn().
			Str("tenant", cred.Tenant).
			Str("graph_error", instagram.ErrorMessage(payload)).
			Msg("token refresh rejected")
		return payload, false, nil
	}

	if err := s.store.SaveRefreshed(ctx, cred.Tenant, token); err != nil {
		metrics.TokenRefreshes.WithLabelValues(cred.Tenant, "error").Inc()
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, false, errs.NewNotFoundError(fmt.Sprintf("credentials for %s were never seeded", cred.Tenant), true, nil)
		}
		return nil, false, sqlerr.HandleError(err)
	}

	metrics.TokenRefreshes.WithLabelValues(cred.Tenant, "success").Inc()
	s.logger.Info().Str("tenant", cred.Tenant).Msg("access token refreshed")

	return payload, true, nil
}

// RefreshAll refreshes every configured tenant that has a stored token. Rows
// left behind by tenants removed from configuration are skipped.
func (s *CredentialService) RefreshAll(ctx context.Context) ([]string, []model.RefreshFailure) {
	creds, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list credentials")
		return nil, []model.RefreshFailure{{Tenant: "*", Error: err.Error()}}
	}

	var refreshed []string
	var failures []model.RefreshFailure
	for _, cred := range creds {
		if cred.AccessToken == "" {
			continue
		}
		if _, ok := s.cfg.TenantCredentials(cred.Tenant); !ok {
			s.logger.Debug().Str("tenant", cred.Tenant).Msg("skipping unconfigured tenant")
			continue
		}

		payload, ok, err := s.refresh(ctx, cred.Tenant)
		switch {
		case err != nil:
			failures = append(failures, model.RefreshFailure{Tenant: cred.Tenant, Error: err.Error()})
		case !ok:
			msg := instagram.ErrorMessage(payload)
			if msg == "" {
				msg = "response carried no access_token"
			}
			failures = append(failures, model.RefreshFailure{Tenant: cred.Tenant, Error: msg})
		default:
			refreshed = append(refreshed, cred.Tenant)
		}
	}

	return refreshed, failures
}
