package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
)

// Context keys under which the verified identity is stored for handlers.
const (
	ContextSubjectKey = "subject"
	ContextEmailKey   = "email"
)

// CustomClaims contains custom data we want from the token
type CustomClaims struct {
	Email string `json:"email"`
	Scope string `json:"scope"`
}

// Validate implements the validator.CustomClaims interface
func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Verifier validates bearer tokens against an Auth0 tenant. Handlers behind
// its middleware receive an already-verified subject in the gin context.
type Verifier struct {
	validator *validator.Validator
}

// NewVerifier builds a JWT verifier for the given Auth0 domain and audience.
func NewVerifier(domain, audience string) (*Verifier, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up validator: %w", err)
	}

	return &Verifier{validator: jwtValidator}, nil
}

// EnsureValidToken is a middleware that validates the Authorization bearer
// token and sets the verified subject (and email claim, when present) on
// the gin context.
func (v *Verifier) EnsureValidToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrNoToken.Error()})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" || token == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			c.Abort()
			return
		}

		claims, err := v.validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			c.Abort()
			return
		}

		validatedClaims, ok := claims.(*validator.ValidatedClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrNoValidatedClaims.Error()})
			c.Abort()
			return
		}

		subject := validatedClaims.RegisteredClaims.Subject
		if subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidSubject.Error()})
			c.Abort()
			return
		}

		c.Set(ContextSubjectKey, subject)
		if custom, ok := validatedClaims.CustomClaims.(*CustomClaims); ok && custom.Email != "" {
			c.Set(ContextEmailKey, custom.Email)
		}
		c.Next()
	}
}
