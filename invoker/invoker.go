package invoker

import (
	"context"
	"time"

	"github.com/jrsteele09/go-api-client/apiclient"
	"github.com/jrsteele09/go-api-client/authflow"
	"github.com/jrsteele09/go-api-client/internal/config"
	"github.com/jrsteele09/go-api-client/internal/errors"
	"github.com/jrsteele09/go-api-client/sessions"
	"github.com/jrsteele09/go-api-client/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultReturnPath is where the callback sends the caller when no
// authorization round-trip was outstanding.
const DefaultReturnPath = "/"

// Flow is the part of the authorization code engine the invoker needs.
type Flow interface {
	AuthorizationURL() string
	Exchange(ctx context.Context, code string) (token.Token, error)
	Refresh(ctx context.Context, stale token.Token) (token.Token, error)
}

// Caller performs a downstream call.
type Caller interface {
	Get(ctx context.Context, req apiclient.Request) (apiclient.Response, error)
}

// Result is either a redirect to the authorization URL or the downstream response.
type Result struct {
	RedirectURL string
	Response    apiclient.Response
}

// IsRedirect reports whether the caller must be sent to authorize first.
func (r Result) IsRedirect() bool {
	return r.RedirectURL != ""
}

// Invoker decides, per request, whether a live token is available, refreshes
// an expired one and then makes the downstream call.
type Invoker struct {
	flow          Flow
	sessions      sessions.Repo
	api           Caller
	refreshPolicy config.RefreshFailurePolicy
	serverToken   string
	nowFunc       func() time.Time

	// refreshGroup collapses concurrent refreshes of the same session into one call
	refreshGroup singleflight.Group
}

// Option configures the Invoker.
type Option func(*Invoker)

// WithRefreshFailurePolicy chooses what happens to the stored token when a refresh is rejected.
func WithRefreshFailurePolicy(p config.RefreshFailurePolicy) Option {
	return func(i *Invoker) {
		i.refreshPolicy = p
	}
}

// WithServerToken sets the static credential for application-restricted calls.
func WithServerToken(serverToken string) Option {
	return func(i *Invoker) {
		i.serverToken = serverToken
	}
}

// WithClock replaces the clock used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(i *Invoker) {
		i.nowFunc = now
	}
}

func New(flow Flow, repo sessions.Repo, api Caller, opts ...Option) *Invoker {
	i := &Invoker{
		flow:          flow,
		sessions:      repo,
		api:           api,
		refreshPolicy: config.RefreshPolicyRetain,
		nowFunc:       token.NowTimeFunc,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke calls a user-restricted resource on behalf of the session. With no
// token it records returnPath and returns a redirect. With an expired token
// it refreshes first; a refresh failure is returned and no call is made.
func (i *Invoker) Invoke(ctx context.Context, sessionID, returnPath string, req apiclient.Request) (Result, error) {
	rec := i.sessions.Get(sessionID)
	if !rec.HasToken() {
		return i.authorize(sessionID, returnPath)
	}

	tok := *rec.Token
	if tok.IsExpired(i.nowFunc()) {
		log.Info().Stringer("token", tok).Msg("Token expired")
		fresh, err := i.refresh(ctx, sessionID, rec)
		if errors.Is(err, errors.ErrTokenCleared) {
			return i.authorize(sessionID, returnPath)
		}
		if err != nil {
			return Result{}, err
		}
		tok = fresh
	} else {
		log.Debug().Stringer("token", tok).Msg("Using token from session")
	}

	req.BearerToken = tok.AccessToken()
	resp, err := i.api.Get(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: resp}, nil
}

func (i *Invoker) authorize(sessionID, returnPath string) (Result, error) {
	log.Info().Str("return_path", returnPath).Msg("Need to request token")
	if err := i.sessions.SetPendingReturn(sessionID, returnPath); err != nil {
		return Result{}, errors.Wrapf(err, "[invoker Invoke] failed to record return path")
	}
	return Result{RedirectURL: i.flow.AuthorizationURL()}, nil
}

// Callback services the authorization redirect: it exchanges the code,
// stores the token and returns the path the caller originally asked for.
// The pending return path is consumed whether or not the exchange succeeds.
func (i *Invoker) Callback(ctx context.Context, sessionID, code string) (string, error) {
	tok, err := i.flow.Exchange(ctx, code)
	returnPath, ok := i.sessions.TakePendingReturn(sessionID)
	if !ok {
		returnPath = DefaultReturnPath
	}
	if err != nil {
		return "", err
	}

	if _, err := i.sessions.SetToken(sessionID, tok); err != nil {
		return "", errors.Wrapf(err, "[invoker Callback] failed to store token")
	}
	return returnPath, nil
}

// AbandonAuthorization ends an outstanding round-trip that the provider
// refused, discarding the pending return path.
func (i *Invoker) AbandonAuthorization(sessionID string) {
	if path, ok := i.sessions.TakePendingReturn(sessionID); ok {
		log.Info().Str("return_path", path).Msg("Authorization abandoned")
	}
}

// CallUnrestricted calls an endpoint that needs no credential.
func (i *Invoker) CallUnrestricted(ctx context.Context, req apiclient.Request) (apiclient.Response, error) {
	req.BearerToken = ""
	return i.api.Get(ctx, req)
}

// CallApplication calls an application-restricted endpoint with the server token.
func (i *Invoker) CallApplication(ctx context.Context, req apiclient.Request) (apiclient.Response, error) {
	req.BearerToken = i.serverToken
	return i.api.Get(ctx, req)
}

// SignOut drops the session's token so the next protected call re-authorizes.
func (i *Invoker) SignOut(sessionID string) error {
	return i.sessions.ClearToken(sessionID)
}

// refresh runs at most one refresh per session. The shared call is detached
// from the first caller's cancellation so waiters are not failed by it; each
// caller still stops waiting when its own context ends.
func (i *Invoker) refresh(ctx context.Context, sessionID string, seen sessions.Record) (token.Token, error) {
	shared := context.WithoutCancel(ctx)
	ch := i.refreshGroup.DoChan(sessionID, func() (interface{}, error) {
		// Another request may have stored a newer token since seen was read.
		base := i.sessions.Get(sessionID)
		if !base.HasToken() {
			base = seen
		} else if !base.Token.IsExpired(i.nowFunc()) {
			return *base.Token, nil
		}

		fresh, err := i.flow.Refresh(shared, *base.Token)
		if err != nil {
			if i.refreshPolicy == config.RefreshPolicyReauthorize && providerRejected(err) &&
				i.sessions.ClearTokenIfVersion(sessionID, base.Version) {
				log.Info().Msg("Refresh rejected, token cleared for re-authorization")
			}
			return nil, err
		}

		stored, ok, err := i.sessions.CompareAndSwapToken(sessionID, base.Version, fresh)
		if err != nil {
			return nil, errors.Wrapf(err, "[invoker refresh] failed to store token")
		}
		if ok {
			return fresh, nil
		}
		if !stored.HasToken() {
			log.Info().Msg("Session signed out during refresh, refreshed token discarded")
			return nil, errors.ErrTokenCleared
		}
		if !stored.Token.IsExpired(i.nowFunc()) {
			// A newer token was written while refreshing; it wins.
			return *stored.Token, nil
		}
		log.Warn().Msg("Session changed during refresh, refreshed token not stored")
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return token.Token{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return token.Token{}, res.Err
		}
		tok := res.Val.(token.Token)
		log.Info().Stringer("token", tok).Bool("shared", res.Shared).Msg("Refreshed token")
		return tok, nil
	}
}

// providerRejected reports whether the token endpoint answered with a
// rejection, as opposed to the call never completing.
func providerRejected(err error) bool {
	var refreshErr *authflow.RefreshFailedError
	if errors.As(err, &refreshErr) {
		return refreshErr.Provider.StatusCode != 0
	}
	return false
}
