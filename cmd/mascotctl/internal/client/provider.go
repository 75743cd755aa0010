package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/auth"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PublicPaths are the routes reachable without a session, besides /login.
var PublicPaths = []string{"/setup/"}

// Options configures a Provider.
type Options struct {
	ServerURL string
	// Token is an ephemeral bearer token that bypasses the credential store.
	Token string
	// RedisAddr selects the shared Redis store instead of the credentials file.
	RedisAddr string
	RedisKey  string
	// Dir is where the file store keeps credentials.json.
	Dir    string
	Logger *zap.Logger
	// HTTPClient overrides the client used for API calls.
	HTTPClient *http.Client
}

// Provider lazily builds the credential store, session and SDK client for a
// single CLI invocation. Every accessor returns the same instances.
type Provider struct {
	opts Options

	storeOnce sync.Once
	store     sdk.CredentialStore
	storeErr  error
	rdb       *redis.Client

	sessionOnce sync.Once
	gateway     *sdk.Gateway
	session     *sdk.Session
	sdkClient   *sdk.Client
	sessionErr  error
}

// NewProvider constructs a new Provider.
func NewProvider(opts Options) *Provider {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Provider{opts: opts}
}

// ServerURL returns the admin API base URL.
func (p *Provider) ServerURL() string {
	return p.opts.ServerURL
}

// Store returns the credential store selected by the options:
// an ephemeral token first, then Redis, then the credentials file.
func (p *Provider) Store() (sdk.CredentialStore, error) {
	p.storeOnce.Do(func() {
		switch {
		case p.opts.Token != "":
			p.opts.Logger.Debug("using ephemeral token from environment")
			p.store = sdk.NewMemoryStore(p.opts.Token)
		case p.opts.RedisAddr != "":
			p.opts.Logger.Debug("using shared redis credential store", zap.String("addr", p.opts.RedisAddr))
			p.rdb = redis.NewClient(&redis.Options{Addr: p.opts.RedisAddr})
			p.store = sdk.NewRedisStore(p.rdb, p.opts.RedisKey)
		default:
			fs, err := auth.NewFileStore(p.opts.Dir)
			if err != nil {
				p.storeErr = fmt.Errorf("failed to create credential store: %w", err)
				return
			}
			p.store = fs
		}
	})
	return p.store, p.storeErr
}

// IsEphemeral reports whether the session comes from an environment token
// rather than a stored login.
func (p *Provider) IsEphemeral() bool {
	return p.opts.Token != ""
}

// Session returns the session controller bound to the credential store.
func (p *Provider) Session() (*sdk.Session, error) {
	p.sessionOnce.Do(func() {
		if p.opts.ServerURL == "" {
			p.sessionErr = errors.New("admin API URL is not configured; pass --server or set MASCOT_ADMIN_API")
			return
		}
		store, err := p.Store()
		if err != nil {
			p.sessionErr = err
			return
		}

		gwOpts := []sdk.GatewayOption{sdk.WithGatewayLogger(p.opts.Logger.Named("gateway"))}
		if p.opts.HTTPClient != nil {
			gwOpts = append(gwOpts, sdk.WithGatewayHTTPClient(p.opts.HTTPClient))
		}
		p.gateway = sdk.NewGateway(p.opts.ServerURL, store, gwOpts...)
		p.session = sdk.NewSession(p.gateway,
			sdk.WithPublicPaths(PublicPaths...),
			sdk.WithSessionLogger(p.opts.Logger.Named("session")),
		)
		p.sdkClient = sdk.NewClient(p.gateway)
	})
	return p.session, p.sessionErr
}

// SDKClient returns the admin API client sharing the Session's gateway.
func (p *Provider) SDKClient() (*sdk.Client, error) {
	if _, err := p.Session(); err != nil {
		return nil, err
	}
	return p.sdkClient, nil
}

// Close releases the Redis connection, if one was opened.
func (p *Provider) Close() error {
	if p.rdb != nil {
		return p.rdb.Close()
	}
	return nil
}

// EnsureTimeout bounds ctx by timeout unless it already has a deadline.
func EnsureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}
