package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims mirror the token payload handed to clients: {"id": <userId>}.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Manager issues and verifies access tokens with one shared HMAC secret.
type Manager struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:    time.Now,
	}
}

// GenerateAccessToken signs a token for userID. Tokens carry no expiry and stay valid
// until the signing secret changes.
func (m *Manager) GenerateAccessToken(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("auth: empty user id")
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(m.now().UTC()),
			Subject:  userID,
		},
	}).SignedString(m.secret)
}

// VerifyAccessToken returns the claims of an HS256 token signed with the current
// secret. The embedded user id is trusted as-is; no user lookup happens here.
func (m *Manager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}

	var claims Claims
	_, err := m.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
