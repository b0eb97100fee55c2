package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-user-management/config"
	"github.com/FACorreiaa/go-user-management/internal/api"
	"github.com/FACorreiaa/go-user-management/internal/types"
)

// Define typed context keys
type contextKey string

const UserKey contextKey = "user"

// DefaultClaimHeader is the header carrying the JSON identity claim when no
// header name is configured.
const DefaultClaimHeader = "user"

// Claims is the payload of a signed bearer token in "bearer" auth mode.
// It carries the same identity fields as the plain header claim.
type Claims struct {
	UserID int        `json:"user_id"`
	Role   types.Role `json:"role"`
	Email  string     `json:"email"`
	jwt.RegisteredClaims
}

// Authenticate returns the middleware that extracts the caller's identity
// claim and attaches it to the request context.
//
// In "header" mode (the default) the claim is read verbatim from the
// configured request header as a JSON object {id, role, email}. The claim is
// trusted as asserted by the caller; no cryptographic verification is
// performed. In "bearer" mode the claim must arrive as an HS256-signed token
// in the Authorization header instead.
func Authenticate(logger *slog.Logger, cfg config.AuthConfig) func(next http.Handler) http.Handler {
	if cfg.Mode == "bearer" && cfg.JWTSecret == "" {
		logger.Error("FATAL: bearer auth mode requires a JWT secret")
		panic("JWT secret cannot be empty in bearer auth mode")
	}

	headerName := cfg.Header
	if headerName == "" {
		headerName = DefaultClaimHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			var payload *types.UserPayload
			var err error
			if cfg.Mode == "bearer" {
				payload, err = payloadFromBearerToken(r, cfg)
			} else {
				payload, err = payloadFromClaimHeader(r, headerName)
			}

			if err != nil {
				if errors.Is(err, types.ErrUnauthenticated) {
					l.WarnContext(ctx, "Missing identity claim", slog.Any("error", err))
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
				} else {
					l.WarnContext(ctx, "Invalid identity claim", slog.Any("error", err))
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid user data")
				}
				return
			}

			ctx = context.WithValue(ctx, UserKey, payload)
			l.DebugContext(ctx, "Authentication successful, claim added to context",
				slog.Int("userID", payload.ID), slog.String("role", string(payload.Role)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// payloadFromClaimHeader parses the caller-supplied JSON claim. The claim is
// taken at face value; it is a structural stand-in for a real credential.
func payloadFromClaimHeader(r *http.Request, headerName string) (*types.UserPayload, error) {
	claimHeader := r.Header.Get(headerName)
	if claimHeader == "" {
		return nil, fmt.Errorf("missing %q header: %w", headerName, types.ErrUnauthenticated)
	}

	var payload types.UserPayload
	if err := json.Unmarshal([]byte(claimHeader), &payload); err != nil {
		return nil, fmt.Errorf("malformed identity claim: %w", err)
	}
	return &payload, nil
}

// payloadFromBearerToken validates an HS256-signed identity claim from the
// Authorization header.
func payloadFromBearerToken(r *http.Request, cfg config.AuthConfig) (*types.UserPayload, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header: %w", types.ErrUnauthenticated)
	}

	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return nil, fmt.Errorf("authorization header format must be Bearer {token}")
	}
	tokenString := headerParts[1]

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing/validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("token issuer mismatch")
	}

	return &types.UserPayload{
		ID:    claims.UserID,
		Role:  claims.Role,
		Email: claims.Email,
	}, nil
}

// GetUserFromContext returns the identity claim set by Authenticate.
func GetUserFromContext(ctx context.Context) (*types.UserPayload, bool) {
	payload, ok := ctx.Value(UserKey).(*types.UserPayload)
	return payload, ok
}
