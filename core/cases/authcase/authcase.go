// Package authcase registers users, checks passwords and issues the bearer
// tokens that protect the API.
package authcase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrazmi/artplanner/core/repositories/usersrepo"
	"github.com/jrazmi/artplanner/sdk/environment"
	"github.com/jrazmi/artplanner/sdk/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid registration")
	ErrInvalidToken       = errors.New("invalid token")
)

// Config represents the exportable auth configuration
type Config struct {
	SigningKey string        `env:"JWT_SIGNING_KEY" required:"true"`
	Issuer     string        `env:"JWT_ISSUER" default:"artplanner"`
	TTL        time.Duration `env:"JWT_TTL" default:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" default:"10"`
}

// LoadConfig parses the auth configuration from environment variables.
func LoadConfig(prefix string) (Config, error) {
	var cfg Config
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing auth config: %w", err)
	}
	return cfg, nil
}

// Claims is the JWT payload bound to one user.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type Register struct {
	Username string
	Email    string
	Password string
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token    string
	UserID   string
	Username string
}

type Case struct {
	log   *logger.Logger
	users *usersrepo.Repository
	cfg   Config
	now   func() time.Time
}

func New(log *logger.Logger, users *usersrepo.Repository, cfg Config) (*Case, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("jwt signing key is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &Case{
		log:   log,
		users: users,
		cfg:   cfg,
		now:   time.Now,
	}, nil
}

// Register hashes the password and creates the user. Duplicate emails surface
// as usersrepo.ErrDuplicateEmail.
func (c *Case) Register(ctx context.Context, in Register) (usersrepo.User, error) {
	if err := validateRegister(in); err != nil {
		return usersrepo.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), c.cfg.BcryptCost)
	if err != nil {
		return usersrepo.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := c.users.Create(ctx, usersrepo.CreateUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return usersrepo.User{}, fmt.Errorf("register: %w", err)
	}

	return user, nil
}

// Login checks the password and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (c *Case) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := c.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := c.IssueToken(user.UserID)
	if err != nil {
		return Session{}, err
	}

	c.log.InfoContext(ctx, "user logged in", "user_id", user.UserID)
	return Session{Token: token, UserID: user.UserID, Username: user.Username}, nil
}

// IssueToken signs an HS256 token for userID.
func (c *Case) IssueToken(userID string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.SigningKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature, algorithm, issuer and expiry and returns
// the user id the token was issued for.
func (c *Case) VerifyToken(ctx context.Context, token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.cfg.Issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(c.cfg.SigningKey), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	return claims.UserID, nil
}

func validateRegister(in Register) error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	// bcrypt ignores input past 72 bytes.
	if len(in.Password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidInput)
	}
	return nil
}
