package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/tokyosushibar/backend/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "auth").Logger()

// AuthenticationError reports a credential mismatch. The message never
// distinguishes an unknown email from a wrong password.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string { return "invalid email or password" }

// TokenExchangeError reports a failure of the external token endpoint.
type TokenExchangeError struct {
	Err error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// TokenSet is the bearer token pair returned to the client.
type TokenSet struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	RefreshToken string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Config names the external OAuth token endpoint and its client credentials.
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Service bridges verified local credentials to bearer tokens issued by the
// external OAuth endpoint (password and refresh_token grants).
type Service struct {
	users   UserProvider
	conf    *oauth2.Config
	timeout time.Duration
}

func NewService(users UserProvider, cfg Config) *Service {
	return &Service{
		users: users,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		timeout: cfg.Timeout,
	}
}

// Login verifies the credentials against the local user store, then
// exchanges them for a token pair via the password grant.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenSet, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// A DB fault still reads as a failed login to the caller;
		// log the real cause.
		logger.Warn().Err(err).Str("email", email).Msg("login lookup failed")
		return nil, &AuthenticationError{}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &AuthenticationError{}
	}

	token, err := s.conf.PasswordCredentialsToken(s.exchangeContext(ctx), email, password)
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	return toTokenSet(token), nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	source := s.conf.TokenSource(s.exchangeContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	return toTokenSet(token), nil
}

// exchangeContext pins a timeout-bound HTTP client for the outbound grant call.
func (s *Service) exchangeContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: s.timeout})
}

func toTokenSet(token *oauth2.Token) *TokenSet {
	set := &TokenSet{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		set.ExpiresIn = int64(time.Until(token.Expiry).Round(time.Second).Seconds())
	}
	return set
}
