// Package auth gates handlers behind a bearer token checked by an external
// identity service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// ErrUnauthorized means the token is missing or was rejected.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the verified caller.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
}

// Verifier checks a bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// HTTPVerifier asks an identity endpoint whether a token is valid. The
// endpoint receives the token as a bearer credential and answers 200 with
// the identity, or 401/403.
type HTTPVerifier struct {
	URL    string
	Client *http.Client
}

// NewHTTPVerifier creates a verifier with optional proxy support.
func NewHTTPVerifier(verifyURL, proxyURL string) *HTTPVerifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPVerifier{
		URL: verifyURL,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: identity service answered %d", ErrUnauthorized, resp.StatusCode)
	default:
		return nil, fmt.Errorf("identity service error: status %d, body: %s", resp.StatusCode, string(body))
	}

	id := &Identity{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, id); err != nil {
			return nil, fmt.Errorf("decode identity: %w", err)
		}
	}
	return id, nil
}

type identityKey struct{}

// FromContext returns the identity stored by Middleware.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}

// Middleware rejects requests without a valid bearer token before next runs.
// CORS preflight requests pass through unauthenticated.
func Middleware(v Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing authorization token")
			return
		}

		id, err := v.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				log.Info().Err(err).Str("path", r.URL.Path).Msg("rejected token")
				writeError(w, http.StatusUnauthorized, "Invalid authorization token")
				return
			}
			log.Error().Err(err).Msg("token verification failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
