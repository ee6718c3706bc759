package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedToken = errors.New("malformed download token")
	ErrBadSignature   = errors.New("invalid download token signature")
	ErrTokenExpired   = errors.New("download token expired")
)

// DownloadToken is the information embedded in a signed download token.
type DownloadToken struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner issues and verifies HMAC-SHA256 signed download tokens of the form
// jobID.expiry.path.signature, where path and signature are base64url encoded.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer. A non-positive ttl defaults to one day.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration {
	return s.ttl
}

// Generate returns a token for the job's stored file.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("job id and path are required")
	}
	if strings.Contains(jobID, ".") {
		return "", time.Time{}, fmt.Errorf("job id must not contain '.'")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	payload := strings.Join([]string{
		jobID,
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(relPath)),
	}, ".")
	return payload + "." + s.sign(payload), expiresAt, nil
}

// Parse verifies a token and returns its contents. allowExpired skips the expiry check
// so cleanup can still resolve stale tokens.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (*DownloadToken, error) {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 {
		return nil, ErrMalformedToken
	}
	payload, signature := token[:idx], token[idx+1:]
	parts := strings.Split(payload, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}
	if !hmac.Equal([]byte(s.sign(payload)), []byte(signature)) {
		return nil, ErrBadSignature
	}
	expUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, ErrMalformedToken
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrMalformedToken
	}
	parsed := &DownloadToken{JobID: parts[0], Path: string(rawPath), ExpiresAt: time.Unix(expUnix, 0)}
	if !allowExpired && s.now().After(parsed.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return parsed, nil
}

func (s *SignedURLSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
