package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

// PrincipalKind distinguishes staff accounts from student accounts, which
// live in different tables and so have overlapping IDs.
type PrincipalKind string

const (
	KindStaff   PrincipalKind = "staff"
	KindStudent PrincipalKind = "student"
)

// Principal is the verified identity every guarded operation receives.
type Principal struct {
	ID    int64
	Kind  PrincipalKind
	Role  models.Role
	Email string
}

func (p Principal) IsStudent() bool {
	return p.Kind == KindStudent
}

// IsStudentID reports whether p is the student with the given ID.
func (p Principal) IsStudentID(studentID int64) bool {
	return p.Kind == KindStudent && p.ID == studentID
}

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
	}
}

// Claims defines JWT token content
type Claims struct {
	Kind  PrincipalKind `json:"kind"`
	Role  models.Role   `json:"role"`
	Email string        `json:"email"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into a Principal.
func (c *Claims) Principal() (Principal, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, ErrInvalidToken
	}
	return Principal{ID: id, Kind: c.Kind, Role: c.Role, Email: c.Email}, nil
}

// GenerateToken signs an access token for the principal and returns it with
// its lifetime in seconds.
func (s *JWTService) GenerateToken(p Principal) (token string, expiresIn int, err error) {
	now := time.Now()
	claims := &Claims{
		Kind:  p.Kind,
		Role:  p.Role,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(p.ID, 10),
			ID:        uuid.New().String(),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create access token: %w", err)
	}
	return token, int(s.config.AccessTokenExp.Seconds()), nil
}

// ValidateToken validates a token
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithIssuer(s.config.TokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ValidateAndExtractPrincipal validates tokenString and returns the principal
// it carries.
func (s *JWTService) ValidateAndExtractPrincipal(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, ErrInvalidToken
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return Principal{}, err
	}

	if claims.Kind != KindStaff && claims.Kind != KindStudent {
		return Principal{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return claims.Principal()
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), nil
	}

	return "", ErrInvalidFormat
}
