package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/xueqianLu/starksigner/pkg/logger"
	"go.uber.org/zap"
)

const (
	apiKeyHeader    = "X-API-Key"
	signatureHeader = "X-Signature"
	timestampHeader = "X-Timestamp"

	// DefaultMaxTimeSkew is the accepted distance between the request timestamp and now.
	DefaultMaxTimeSkew = 60 * time.Second
)

// AuthMiddleware provides HMAC-based authentication.
type AuthMiddleware struct {
	apiKey      string
	apiSecret   string
	maxTimeSkew time.Duration
	now         func() time.Time
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(apiKey, apiSecret string, maxTimeSkew time.Duration) *AuthMiddleware {
	if maxTimeSkew <= 0 {
		maxTimeSkew = DefaultMaxTimeSkew
	}
	return &AuthMiddleware{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		maxTimeSkew: maxTimeSkew,
		now:         time.Now,
	}
}

// Sign returns the hex HMAC-SHA256 of timestamp||body under secret.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	logger.Warn("Rejected request", zap.String("path", r.URL.Path), zap.String("reason", reason))
	http.Error(w, reason, http.StatusUnauthorized)
}

// Wrap wraps an http.Handler with authentication.
func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Check API Key
		requestAPIKey := r.Header.Get(apiKeyHeader)
		if !hmac.Equal([]byte(requestAPIKey), []byte(m.apiKey)) {
			m.reject(w, r, "Invalid API Key")
			return
		}

		// 2. Check Timestamp
		timestampStr := r.Header.Get(timestampHeader)
		if timestampStr == "" {
			m.reject(w, r, "Missing timestamp header")
			return
		}
		timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
		if err != nil {
			m.reject(w, r, "Invalid timestamp format")
			return
		}
		skew := m.now().Sub(time.Unix(timestamp, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > m.maxTimeSkew {
			m.reject(w, r, "Timestamp expired")
			return
		}

		// 3. Check Signature
		requestSignature := r.Header.Get(signatureHeader)
		if requestSignature == "" {
			m.reject(w, r, "Missing signature header")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		// Restore the body so the next handler can read it
		r.Body = io.NopCloser(bytes.NewReader(body))

		expectedSignature := Sign(m.apiSecret, timestampStr, body)
		if !hmac.Equal([]byte(requestSignature), []byte(expectedSignature)) {
			m.reject(w, r, "Invalid signature")
			return
		}

		next.ServeHTTP(w, r)
	})
}
