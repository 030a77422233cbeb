package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/buyside/procure/internal/adapter/orderservice"
	domainErrors "github.com/buyside/procure/internal/domain/errors"
	"github.com/buyside/procure/internal/domain/repository"
)

// TokenProvider supplies a valid bearer token for the external service,
// refreshing stored credentials before they expire.
type TokenProvider struct {
	credentials repository.CredentialRepository
	client      orderservice.Client
	leeway      time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewTokenProvider constructs a TokenProvider with the given refresh leeway.
func NewTokenProvider(credentials repository.CredentialRepository, client orderservice.Client, leeway time.Duration, logger *slog.Logger) *TokenProvider {
	return &TokenProvider{
		credentials: credentials,
		client:      client,
		leeway:      leeway,
		now:         time.Now,
		logger:      logger,
	}
}

// Valid returns an access token good for at least the refresh leeway. A
// failed refresh is not retried: the tenant must reconnect.
func (p *TokenProvider) Valid(ctx context.Context, tenantID int64) (string, error) {
	credential, err := p.credentials.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return "", fmt.Errorf("tenant %d: %w", tenantID, domainErrors.ErrNoCredentials)
		}
		return "", err
	}

	if credential.ExpiresAt.After(p.now().Add(p.leeway)) {
		return credential.AccessToken, nil
	}

	pair, err := p.client.RefreshToken(ctx, credential.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domainErrors.ErrReauthRequired, err)
	}

	credential.AccessToken = pair.AccessToken
	credential.RefreshToken = pair.RefreshToken
	credential.ExpiresAt = p.now().Add(time.Duration(pair.ExpiresIn) * time.Second)

	if err := p.credentials.Save(ctx, credential); err != nil {
		// The refreshed token is still usable for this request.
		p.logger.Warn("failed to persist refreshed credentials",
			slog.Int64("tenant", tenantID),
			slog.String("error", err.Error()),
		)
	}

	return credential.AccessToken, nil
}
