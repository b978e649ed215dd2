package services

import (
	"crypto/subtle"
	"errors"
	"time"

	"eventreg/src/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	username     string
	passwordHash []byte
	dummyHash    []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
	log          *zerolog.Logger
}

func NewAuthService(username, passwordHash, secret string, ttl time.Duration, logger *zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	// compared against when the username is wrong so both failure paths
	// cost one bcrypt comparison at the same work factor
	cost := bcrypt.DefaultCost
	if c, err := bcrypt.Cost([]byte(passwordHash)); err == nil {
		cost = c
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-the-admin-password"), cost)
	return &AuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
		dummyHash:    dummy,
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
		log:          logger,
	}
}

// Login checks the admin credential and issues a signed session token.
func (s *AuthService) Login(username, password string) (string, error) {
	if len(s.passwordHash) == 0 || len(s.secret) == 0 {
		s.log.Error().Msg("ADMIN_PASSWORD_HASH or JWT_SECRET is not set")
		return "", types.NewConfigurationError("Authentication is not configured", errors.New("ADMIN_PASSWORD_HASH or JWT_SECRET is not set"))
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	hash := s.passwordHash
	if !userOK {
		hash = s.dummyHash
	}
	passErr := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if !userOK || passErr != nil {
		s.log.Warn().Msg("admin login failed")
		return "", types.ErrInvalidCredentials
	}

	now := s.now()
	claims := types.Claims{
		Username: s.username,
		Role:     types.ROLE_ADMIN,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	s.log.Info().Str("username", s.username).Msg("admin logged in")
	return token, nil
}

// Verify validates a session token. Every failure maps to ErrUnauthorized.
func (s *AuthService) Verify(token string) (*types.SessionInfo, error) {
	if len(s.secret) == 0 {
		return nil, types.Unauthorized(errors.New("JWT_SECRET is not set"))
	}
	claims := &types.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, types.Unauthorized(err)
	}
	if claims.Role != types.ROLE_ADMIN {
		return nil, types.Unauthorized(errors.New("token role is not admin"))
	}
	return &types.SessionInfo{Username: claims.Username, Role: claims.Role}, nil
}
