package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/internal/db"
)

func setupUserServiceTest(t *testing.T) (UserService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	_, client := newMessagingStub(t)
	userRepo := repository.NewUserRepository(testDB)
	businessRepo := repository.NewBusinessRepository(testDB)
	provisioner := NewProvisionService(userRepo, businessRepo, client)

	return NewUserService(userRepo, provisioner), testDB
}

func TestUserService_Create(t *testing.T) {
	svc, _ := setupUserServiceTest(t)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Phone: "+15551234567",
		Name:  "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)
	assert.True(t, user.IsProvisioned())

	_, err = svc.Create(context.Background(), CreateUserInput{Phone: "+15551234567"})
	assert.ErrorIs(t, err, ErrPhoneExists)

	_, err = svc.Create(context.Background(), CreateUserInput{Phone: "not-a-phone"})
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestUserService_List_Search(t *testing.T) {
	svc, testDB := setupUserServiceTest(t)

	require.NoError(t, testDB.Create(&model.User{
		UserID: "user_1", Phone: "+15550001111", Name: "Alice", IsActive: true,
	}).Error)
	require.NoError(t, testDB.Create(&model.User{
		UserID: "user_2", Phone: "+15550002222", Name: "Bob", IsActive: true,
	}).Error)
	require.NoError(t, testDB.Create(&model.User{
		UserID: "user_3", Phone: "+15550003333", Name: "Gone", IsActive: false,
	}).Error)

	all, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := svc.List("ali")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Alice", matched[0].Name)

	byPhone, err := svc.List("0002222")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Bob", byPhone[0].Name)
}

func TestUserService_UpdateProfile_SelfOnly(t *testing.T) {
	svc, testDB := setupUserServiceTest(t)

	require.NoError(t, testDB.Create(&model.User{
		UserID: "user_1", Phone: "+15550001111", Name: "Alice", IsActive: true,
	}).Error)

	name := "Alice Updated"
	_, err := svc.UpdateProfile("user_1", "user_2", UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, ErrAccessDenied)

	updated, err := svc.UpdateProfile("user_1", "user_1", UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", updated.Name)
	// Phone is not part of the profile update
	assert.Equal(t, "+15550001111", updated.Phone)
}

func TestUserService_GetByID(t *testing.T) {
	svc, testDB := setupUserServiceTest(t)

	require.NoError(t, testDB.Create(&model.User{
		UserID: "user_1", Phone: "+15550001111", IsActive: true,
	}).Error)

	user, err := svc.GetByID("user_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", user.UserID)

	_, err = svc.GetByID("user_missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
