package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/antirek/bank/config"
	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/internal/db"
	"github.com/antirek/bank/pkg/util"
)

// memoryCodeRepository is an in-process stand-in for the Redis code store.
type memoryCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*repository.VerificationCode
}

func newMemoryCodeRepository() *memoryCodeRepository {
	return &memoryCodeRepository{
		codes: make(map[string]*repository.VerificationCode),
	}
}

func (r *memoryCodeRepository) Save(_ context.Context, phone, codeHash string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[phone] = &repository.VerificationCode{Hash: codeHash}
	return nil
}

func (r *memoryCodeRepository) Get(_ context.Context, phone string) (*repository.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[phone]
	if !ok {
		return nil, nil
	}
	copied := *code
	return &copied, nil
}

func (r *memoryCodeRepository) IncrementAttempts(_ context.Context, phone string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[phone]
	if !ok {
		return 0, nil
	}
	code.Attempts++
	return code.Attempts, nil
}

func (r *memoryCodeRepository) Delete(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, phone)
	return nil
}

// seedCode stores a known code the way SendCode would.
func (r *memoryCodeRepository) seedCode(t *testing.T, phone, code string) {
	hash, err := util.HashCode(code)
	require.NoError(t, err)
	require.NoError(t, r.Save(context.Background(), phone, hash, 10*time.Minute))
}

func setupAuthServiceTest(t *testing.T) (AuthService, *memoryCodeRepository, *gorm.DB, *messagingStub) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	stub, client := newMessagingStub(t)

	userRepo := repository.NewUserRepository(testDB)
	businessRepo := repository.NewBusinessRepository(testDB)
	codeRepo := newMemoryCodeRepository()
	provisioner := NewProvisionService(userRepo, businessRepo, client)

	svc := NewAuthService(userRepo, codeRepo, provisioner, config.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
	}, true)

	return svc, codeRepo, testDB, stub
}

func TestAuthService_SendCode(t *testing.T) {
	svc, codes, _, _ := setupAuthServiceTest(t)

	require.NoError(t, svc.SendCode(context.Background(), "+15551234567"))

	stored, err := codes.Get(context.Background(), "+15551234567")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.Hash)
}

func TestAuthService_SendCode_InvalidPhone(t *testing.T) {
	svc, _, _, _ := setupAuthServiceTest(t)

	for _, phone := range []string{"", "abc", "0123", "+0123456"} {
		err := svc.SendCode(context.Background(), phone)
		assert.ErrorIs(t, err, ErrInvalidPhone, "phone %q", phone)
	}
}

func TestAuthService_VerifyCode_CreatesUserOnFirstLogin(t *testing.T) {
	svc, codes, testDB, stub := setupAuthServiceTest(t)
	codes.seedCode(t, "+15551234567", "1234")

	result, err := svc.VerifyCode(context.Background(), "+15551234567", "1234")
	require.NoError(t, err)
	assert.True(t, result.IsNew)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "+15551234567", result.User.Phone)
	assert.NotNil(t, result.User.LastLoginAt)

	// Token carries the user identity
	claims, err := util.ValidateToken(result.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, result.User.UserID, claims.UserID)

	// Messaging identity attached on login
	assert.Equal(t, 1, stub.createUserCalls)
	var reloaded model.User
	require.NoError(t, testDB.Where("phone = ?", "+15551234567").First(&reloaded).Error)
	assert.True(t, reloaded.IsProvisioned())
}

func TestAuthService_VerifyCode_ExistingUser(t *testing.T) {
	svc, codes, testDB, _ := setupAuthServiceTest(t)

	existing := &model.User{
		UserID:          "user_existing",
		Phone:           "+15551234567",
		Name:            "Existing",
		MessagingUserID: "mu_existing",
		IsActive:        true,
	}
	require.NoError(t, testDB.Create(existing).Error)

	codes.seedCode(t, "+15551234567", "1234")
	result, err := svc.VerifyCode(context.Background(), "+15551234567", "1234")
	require.NoError(t, err)
	assert.False(t, result.IsNew)
	assert.Equal(t, "user_existing", result.User.UserID)
}

func TestAuthService_VerifyCode_WrongCode(t *testing.T) {
	svc, codes, _, _ := setupAuthServiceTest(t)
	codes.seedCode(t, "+15551234567", "1234")

	_, err := svc.VerifyCode(context.Background(), "+15551234567", "9999")
	assert.ErrorIs(t, err, ErrCodeInvalid)

	// The right code still works afterwards
	result, err := svc.VerifyCode(context.Background(), "+15551234567", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestAuthService_VerifyCode_SingleUse(t *testing.T) {
	svc, codes, _, _ := setupAuthServiceTest(t)
	codes.seedCode(t, "+15551234567", "1234")

	_, err := svc.VerifyCode(context.Background(), "+15551234567", "1234")
	require.NoError(t, err)

	_, err = svc.VerifyCode(context.Background(), "+15551234567", "1234")
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestAuthService_VerifyCode_TooManyAttempts(t *testing.T) {
	svc, codes, _, _ := setupAuthServiceTest(t)
	codes.seedCode(t, "+15551234567", "1234")

	var err error
	for i := 0; i < maxCodeAttempts; i++ {
		_, err = svc.VerifyCode(context.Background(), "+15551234567", "0000")
	}
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// The code is burned, even the right one is rejected now
	_, err = svc.VerifyCode(context.Background(), "+15551234567", "1234")
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestAuthService_VerifyCode_NoCodeRequested(t *testing.T) {
	svc, _, _, _ := setupAuthServiceTest(t)

	_, err := svc.VerifyCode(context.Background(), "+15551234567", "1234")
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestAuthService_VerifyCode_SurvivesProvisioningFailure(t *testing.T) {
	svc, codes, _, stub := setupAuthServiceTest(t)
	stub.srv.Close()
	codes.seedCode(t, "+15551234567", "1234")

	result, err := svc.VerifyCode(context.Background(), "+15551234567", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.False(t, result.User.IsProvisioned())
}
