package middleware

import (
	"fmt"
	"strings"
	"time"

	"quizgen/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const identityKey = "identity"

// Identity is the caller as asserted by a verified token.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// JWTAuth issues and verifies HS256 bearer tokens.
type JWTAuth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTAuth(secret string, ttl time.Duration) *JWTAuth {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTAuth{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT generates a JWT token for the user
func (a *JWTAuth) GenerateJWT(uid, username, email string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"uid":      uid,
		"username": username,
		"email":    email,
		"iat":      now.Unix(),            // issued at
		"exp":      now.Add(a.ttl).Unix(), // expiry
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyToken checks an Authorization header value and returns the identity
// it carries. Every failure is an auth error.
func (a *JWTAuth) VerifyToken(authHeader string) (Identity, error) {
	if authHeader == "" {
		return Identity{}, apperr.Auth("Missing or invalid Authorization header")
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Identity{}, apperr.Auth("Invalid Authorization header format")
	}
	tokenString := strings.TrimSpace(authHeader[len("Bearer "):])

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperr.Auth("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperr.Auth("Invalid token payload")
	}
	uid, _ := claims["uid"].(string)
	if uid == "" {
		return Identity{}, apperr.Auth("Invalid token payload")
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	return Identity{UserID: uid, Username: username, Email: email}, nil
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func (a *JWTAuth) JWTMiddleware(c *fiber.Ctx) error {
	identity, err := a.VerifyToken(c.Get("Authorization"))
	if err != nil {
		return ErrorResponse(c, err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// CurrentIdentity returns the identity stored by JWTMiddleware.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityKey).(Identity)
	return identity, ok
}
