package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"Wanderfund/config"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const UserIDKey = "user_id"

var (
	errMissingToken = appErrors.NewAuthError("MISSING_TOKEN", "Authorization header is required")
	errInvalidToken = appErrors.NewAuthError("INVALID_TOKEN", "Invalid or expired token")
)

type Claims struct {
	jwt.RegisteredClaims
}

// JwtService validates bearer tokens issued by the account service. The
// subject claim carries the user id.
type JwtService struct {
	secret []byte
	issuer string
}

func NewJwtService(cfg config.JWTConfig) (*JwtService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return &JwtService{secret: []byte(cfg.Secret), issuer: cfg.Issuer}, nil
}

// GenerateToken signs a token for userID. Used by tooling and tests.
func (s *JwtService) GenerateToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JwtService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if _, err := pkg.ParseULID(claims.Subject); err != nil {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

func AuthMiddleware(jwtSvc *JwtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, errMissingToken)
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			abortWithError(c, errInvalidToken)
			return
		}

		claims, err := jwtSvc.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			abortWithError(c, errInvalidToken)
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

// InternalToken guards operator endpoints. An empty token closes them.
func InternalToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Internal-Token")), []byte(token)) != 1 {
			abortWithError(c, appErrors.WrapError(nil, appErrors.ErrForbidden.Code, "Internal token required", http.StatusForbidden))
			return
		}
		c.Next()
	}
}
