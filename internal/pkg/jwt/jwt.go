package jwt

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

// Claims identifies a dashboard caller.
type Claims struct {
	UserID  string
	GuildID string
	Role    employee.Role
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	GenerateSSEToken(claims Claims) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":  claims.UserID,
		"guild_id": claims.GuildID,
		"role":     string(claims.Role),
		"type":     TokenTypeAccess,
		"exp":      expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for EventSource clients,
// which cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(claims Claims) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":  claims.UserID,
		"guild_id": claims.GuildID,
		"role":     string(claims.Role),
		"type":     TokenTypeSSE,
		"exp":      expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its claims
func (j *JWTService) ValidateSSEToken(tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	return ClaimsFromMap(token.PrivateClaims())
}

// ClaimsFromMap extracts the identity claims from a decoded token.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	userID, ok := m["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, jwt.ErrInvalidJWT()
	}
	guildID, ok := m["guild_id"].(string)
	if !ok || guildID == "" {
		return Claims{}, jwt.ErrInvalidJWT()
	}
	role, _ := m["role"].(string)

	return Claims{UserID: userID, GuildID: guildID, Role: employee.Role(role)}, nil
}
