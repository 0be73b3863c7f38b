//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks EventPublisher,ProfileFetcher

// Package identitylink is the public operation surface: write operations
// become change events, reads go through the request's mapping cache and
// the cookie lookup calls the identity endpoint.
package identitylink

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"idbridge/internal/mapping"
	"idbridge/internal/pipeline"
	"idbridge/internal/userinfo"
)

// EventPublisher accepts write requests for asynchronous persistence.
type EventPublisher interface {
	PublishLog(ctx context.Context, req pipeline.LogRequest) error
	PublishLoginHistory(ctx context.Context, req pipeline.LoginHistoryRequest) error
	PublishMappingTouch(ctx context.Context, req pipeline.MappingTouchRequest) error
}

// ProfileFetcher resolves a session token to the user's profile.
type ProfileFetcher interface {
	FetchUserProfile(ctx context.Context, sessionToken string) (*userinfo.UserProfile, error)
}

// LoginHistoryRecord is a login attempt reported by a caller. ProviderType
// and LoginInfo are optional.
type LoginHistoryRecord struct {
	ProviderName string
	PrincipalID  string
	FlowType     string
	Timestamp    time.Time
	Success      bool
	ProviderType string
	LoginInfo    string
}

type Service struct {
	events   EventPublisher
	mappings mapping.Store
	access   mapping.AccessChecker
	profiles ProfileFetcher
	cookie   string
	logger   *slog.Logger
}

type Option func(*Service)

// WithSessionCookie overrides the cookie read by GetAuthUserDataFromCookieHeader.
func WithSessionCookie(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.cookie = name
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(events EventPublisher, mappings mapping.Store, checker mapping.AccessChecker, profiles ProfileFetcher, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, errors.New("event publisher is required")
	}
	if mappings == nil {
		return nil, errors.New("mapping store is required")
	}
	if checker == nil {
		return nil, errors.New("access checker is required")
	}
	if profiles == nil {
		return nil, errors.New("profile fetcher is required")
	}
	s := &Service{
		events:   events,
		mappings: mappings,
		access:   checker,
		profiles: profiles,
		cookie:   userinfo.DefaultSessionCookie,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// InsertLog queues a log entry. Persistence happens later in the consumer.
func (s *Service) InsertLog(ctx context.Context, providerName, principalID, logID, message string) error {
	return s.events.PublishLog(ctx, pipeline.LogRequest{
		ProviderName: providerName,
		PrincipalID:  principalID,
		LogID:        logID,
		Message:      message,
	})
}

func (s *Service) InsertLoginHistoryRecord(ctx context.Context, rec LoginHistoryRecord) error {
	return s.events.PublishLoginHistory(ctx, pipeline.LoginHistoryRequest{
		ProviderName: rec.ProviderName,
		PrincipalID:  rec.PrincipalID,
		FlowType:     rec.FlowType,
		Timestamp:    rec.Timestamp,
		Success:      rec.Success,
		ProviderType: rec.ProviderType,
		Info:         rec.LoginInfo,
	})
}

func (s *Service) CheckUserMappingExists(ctx context.Context, providerName, principalID string) (bool, error) {
	return s.cache(ctx).Exists(ctx, providerName, principalID)
}

// UpdateMappingLoginDetails queues a login on the pair's mapping. A missing
// mapping is ignored when the event is applied.
func (s *Service) UpdateMappingLoginDetails(ctx context.Context, providerName, principalID string) error {
	return s.events.PublishMappingTouch(ctx, pipeline.MappingTouchRequest{
		ProviderName: providerName,
		PrincipalID:  principalID,
	})
}

// GetSubjectFromUserMapping returns the mapped external identity, if any.
func (s *Service) GetSubjectFromUserMapping(ctx context.Context, providerName, principalID string) (string, bool, error) {
	return s.cache(ctx).TargetIdentifier(ctx, providerName, principalID)
}

// GetAuthUserDataFromCookieHeader reads the session cookie and fetches the
// profile it belongs to. A header without a session cookie fails the same
// way as a blank token.
func (s *Service) GetAuthUserDataFromCookieHeader(ctx context.Context, cookieHeader string) (*userinfo.UserProfile, error) {
	token, ok := userinfo.ExtractCookie(cookieHeader, s.cookie)
	if !ok {
		s.logger.DebugContext(ctx, "no session cookie in header")
	}
	return s.profiles.FetchUserProfile(ctx, token)
}

// cache returns the request's mapping cache, or a cache private to this
// call when none was installed.
func (s *Service) cache(ctx context.Context) *mapping.Cache {
	if c, ok := mapping.CacheFrom(ctx); ok {
		return c
	}
	return mapping.NewCache(s.mappings, s.access)
}

// NewRequestCache builds a mapping cache for one inbound request.
func (s *Service) NewRequestCache() *mapping.Cache {
	return mapping.NewCache(s.mappings, s.access)
}
