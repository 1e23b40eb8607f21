package spotify

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	_ "embed"

	"github.com/spotifai/deepagent/logging"
)

//go:embed callback.html
var callbackPage []byte

// Scopes requested during authorization. Playlist management needs both the
// read and modify variants since followed playlists may be private.
var scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeImageUpload,
}

// AuthOptions configure the interactive authorization flow.
type AuthOptions struct {
	// RedirectHost must match the host registered in the Spotify dashboard.
	RedirectHost string
	// RedirectPort is where the local callback server listens.
	RedirectPort int
	// TokenCachePath stores the OAuth token between runs.
	TokenCachePath string
	// OpenBrowser launches the system browser with the authorization URL.
	// When false the URL is only logged and must be opened manually.
	OpenBrowser bool
	// Timeout bounds the wait for the user to complete authorization.
	Timeout time.Duration
	Logger  logging.Logger
}

// Authenticate returns an authenticated Spotify client for the given app
// client id, using the authorization-code flow with PKCE. A cached token is
// reused when present; otherwise the browser flow runs and the new token is
// written to the cache.
func Authenticate(ctx context.Context, clientID string, optFns ...func(o *AuthOptions)) (*spotifyapi.Client, error) {
	opts := AuthOptions{
		RedirectHost:   "localhost",
		RedirectPort:   8443,
		TokenCachePath: defaultTokenCachePath(),
		OpenBrowser:    true,
		Timeout:        3 * time.Minute,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if clientID == "" {
		return nil, fmt.Errorf("spotify client id is required")
	}

	redirectURL := fmt.Sprintf("https://%s:%d/callback", opts.RedirectHost, opts.RedirectPort)
	authenticator := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithRedirectURL(redirectURL),
		spotifyauth.WithScopes(scopes...),
	)

	if token, err := loadToken(opts.TokenCachePath); err == nil {
		opts.Logger.Debug("spotify.auth.cached_token", "path", opts.TokenCachePath)
		return spotifyapi.New(authenticator.Client(ctx, token)), nil
	}

	token, err := browserFlow(ctx, authenticator, &opts)
	if err != nil {
		return nil, err
	}
	if err := saveToken(opts.TokenCachePath, token); err != nil {
		opts.Logger.Warn("spotify.auth.cache_write_failed", "path", opts.TokenCachePath, "error", err.Error())
	}
	return spotifyapi.New(authenticator.Client(ctx, token)), nil
}

func browserFlow(ctx context.Context, authenticator *spotifyauth.Authenticator, opts *AuthOptions) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()
	authURL := authenticator.AuthURL(state, oauth2.S256ChallengeOption(verifier))

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	codeCh := make(chan callbackResult, 1)
	server, err := startCallbackServer(opts, codeCh)
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	opts.Logger.Info("spotify.auth.url", "url", authURL)
	fmt.Fprintf(os.Stderr, "Abre esta URL en tu navegador para autorizar el acceso:\n%s\n", authURL)
	if opts.OpenBrowser {
		if err := openBrowser(authURL); err != nil {
			opts.Logger.Warn("spotify.auth.browser_open_failed", "error", err.Error())
		}
	}

	select {
	case res := <-codeCh:
		if res.err != nil {
			return nil, res.err
		}
		if res.state != state {
			return nil, fmt.Errorf("oauth state mismatch")
		}
		return authenticator.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}

type callbackResult struct {
	code  string
	state string
	err   error
}

// startCallbackServer listens on the redirect port with a self-signed
// certificate. Spotify requires an HTTPS redirect URI even for loopback, so
// the user's browser will warn about the certificate on first use.
func startCallbackServer(opts *AuthOptions, codeCh chan<- callbackResult) (*http.Server, error) {
	cert, err := selfSignedCert(opts.RedirectHost)
	if err != nil {
		return nil, fmt.Errorf("generate callback certificate: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if errMsg := query.Get("error"); errMsg != "" {
			http.Error(w, "Autorización denegada.", http.StatusForbidden)
			select {
			case codeCh <- callbackResult{err: fmt.Errorf("authorization denied: %s", errMsg)}:
			default:
			}
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "Falta el código de autorización.", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(callbackPage)
		select {
		case codeCh <- callbackResult{code: code, state: query.Get("state")}:
		default:
		}
	})

	addr := fmt.Sprintf("%s:%d", opts.RedirectHost, opts.RedirectPort)
	server := &http.Server{
		Addr:      addr,
		Handler:   mux,
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	go func() {
		if err := server.ServeTLS(listener, "", ""); err != nil && err != http.ErrServerClosed {
			select {
			case codeCh <- callbackResult{err: fmt.Errorf("callback server: %w", err)}:
			default:
			}
		}
	}()
	return server, nil
}

// selfSignedCert builds an in-memory certificate for the loopback host,
// valid for one year.
func selfSignedCert(host string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}
	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: host},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().AddDate(1, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{host},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, err
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return tls.X509KeyPair(certPEM, keyPEM)
}

func loadToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decode cached token: %w", err)
	}
	if token.RefreshToken == "" && !token.Valid() {
		return nil, fmt.Errorf("cached token expired without refresh token")
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func defaultTokenCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spotifai-token.json"
	}
	return filepath.Join(home, ".spotifai", "token.json")
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
