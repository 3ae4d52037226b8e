// Package identity turns bearer tokens issued by the user service into
// explicit sessions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"
)

// Claims is the JWT payload the user service issues.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type JWTProvider struct {
	secret []byte
	logger *logger.Logger
	now    func() time.Time
}

func NewJWTProvider(secret string, log *logger.Logger) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), logger: log, now: time.Now}
}

// Session validates an HS256 token, with or without a "Bearer " prefix.
func (p *JWTProvider) Session(header string) (domain.Session, error) {
	token := strings.TrimSpace(header)
	if parts := strings.Fields(token); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		token = parts[1]
	}
	if token == "" {
		return domain.Session{}, fmt.Errorf("%w: token is empty", domain.ErrAuthenticationRequired)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		p.logger.Warn("JWTProvider.Session: token rejected", zap.Error(err))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, fmt.Errorf("%w: token has expired", domain.ErrAuthenticationRequired)
		}
		return domain.Session{}, fmt.Errorf("%w: token is invalid: %v", domain.ErrAuthenticationRequired, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return domain.Session{}, fmt.Errorf("%w: token carries no user", domain.ErrAuthenticationRequired)
	}
	return domain.Session{UserID: claims.UserID, Token: token}, nil
}

// FromIncomingContext reads the "authorization" gRPC metadata entry.
func (p *JWTProvider) FromIncomingContext(ctx context.Context) (domain.Session, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: metadata is not provided", domain.ErrAuthenticationRequired)
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return domain.Session{}, fmt.Errorf("%w: authorization token is not provided", domain.ErrAuthenticationRequired)
	}
	return p.Session(values[0])
}

// Issue signs a token for userID. Used by tooling and tests.
func (p *JWTProvider) Issue(userID string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
