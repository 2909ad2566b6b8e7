package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/antirek/bank/config"
	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/pkg/logger"
	"github.com/antirek/bank/pkg/util"
)

// AuthResult is a successful login: the user record plus the issued token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
	IsNew bool        `json:"is_new"`
}

// AuthService implements phone-number login. A short-lived verification code
// is stored hashed in Redis; verifying it logs the user in, creating the
// account on first contact.
type AuthService interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (*AuthResult, error)
}

type authService struct {
	users       repository.UserRepository
	codes       repository.CodeRepository
	provisioner ProvisionService
	jwtConfig   config.JWTConfig
	devMode     bool
}

func NewAuthService(
	users repository.UserRepository,
	codes repository.CodeRepository,
	provisioner ProvisionService,
	jwtConfig config.JWTConfig,
	devMode bool,
) AuthService {
	return &authService{
		users:       users,
		codes:       codes,
		provisioner: provisioner,
		jwtConfig:   jwtConfig,
		devMode:     devMode,
	}
}

const (
	codeTTL         = 10 * time.Minute
	maxCodeAttempts = 5
)

// E.164, optional leading plus
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// SendCode generates a verification code for the phone number and stores its
// hash with a ttl. Requesting a new code replaces the previous one. Actual
// SMS delivery is out of process; in dev mode the code is written to the log
// instead.
func (s *authService) SendCode(ctx context.Context, phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}

	code, err := util.GenerateVerificationCode()
	if err != nil {
		return err
	}
	hash, err := util.HashCode(code)
	if err != nil {
		return err
	}
	if err := s.codes.Save(ctx, phone, hash, codeTTL); err != nil {
		return err
	}

	if s.devMode {
		logger.Info("verification code issued", map[string]interface{}{
			"phone": phone,
			"code":  code,
		})
	} else {
		logger.Info("verification code issued", map[string]interface{}{
			"phone": phone,
		})
	}
	return nil
}

// VerifyCode checks the code and logs the user in, creating the account when
// the phone number is new. The code is single-use and locked out after too
// many wrong guesses.
func (s *authService) VerifyCode(ctx context.Context, phone, code string) (*AuthResult, error) {
	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidPhone
	}

	stored, err := s.codes.Get(ctx, phone)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrCodeInvalid
	}
	if stored.Attempts >= maxCodeAttempts {
		_ = s.codes.Delete(ctx, phone)
		return nil, ErrTooManyAttempts
	}

	if !util.CheckCode(code, stored.Hash) {
		attempts, err := s.codes.IncrementAttempts(ctx, phone)
		if err != nil {
			return nil, err
		}
		if attempts >= maxCodeAttempts {
			_ = s.codes.Delete(ctx, phone)
			return nil, ErrTooManyAttempts
		}
		return nil, ErrCodeInvalid
	}

	if err := s.codes.Delete(ctx, phone); err != nil {
		logger.Warn("verification code cleanup failed", map[string]interface{}{
			"phone": phone,
			"error": err.Error(),
		})
	}

	user, isNew, err := s.findOrCreateUser(phone)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.TouchLastLogin(user.UserID, now); err != nil {
		logger.Warn("last login update failed", map[string]interface{}{
			"user_id": user.UserID,
			"error":   err.Error(),
		})
	}
	user.LastLoginAt = &now

	// Messaging identity is attached opportunistically; login works without
	// it and the sweep retries later.
	if !user.IsProvisioned() {
		if _, err := s.provisioner.EnsureUser(ctx, user); err != nil {
			logger.Warn("user provisioning deferred", map[string]interface{}{
				"user_id": user.UserID,
				"error":   err.Error(),
			})
		}
	}

	token, err := util.GenerateToken(user.UserID, user.Phone, s.jwtConfig.Secret, s.jwtConfig.Expiry)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token, IsNew: isNew}, nil
}

func (s *authService) findOrCreateUser(phone string) (*model.User, bool, error) {
	user, err := s.users.GetByPhone(phone)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = &model.User{
		UserID:   util.NewUserID(),
		Phone:    phone,
		IsActive: true,
	}
	if err := s.users.Create(user); err != nil {
		// Concurrent first login with the same number.
		if repository.IsDuplicateKey(err) {
			existing, lookupErr := s.users.GetByPhone(phone)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return user, true, nil
}
