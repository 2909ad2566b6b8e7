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

func setupBusinessServiceTest(t *testing.T) (BusinessService, *gorm.DB, *messagingStub, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	stub, client := newMessagingStub(t)

	userRepo := repository.NewUserRepository(testDB)
	businessRepo := repository.NewBusinessRepository(testDB)
	provisioner := NewProvisionService(userRepo, businessRepo, client)
	svc := NewBusinessService(businessRepo, userRepo, provisioner)

	owner := &model.User{
		UserID:          "user_owner",
		Phone:           "+15550001111",
		Name:            "Owner",
		MessagingUserID: "mu_owner",
		IsActive:        true,
	}
	require.NoError(t, testDB.Create(owner).Error)

	return svc, testDB, stub, owner
}

func TestBusinessService_Create_ProvisionsBotAndChannel(t *testing.T) {
	svc, testDB, stub, owner := setupBusinessServiceTest(t)

	business, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Flower Shop",
		Slug: "flower-shop",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, business.BusinessID)
	assert.True(t, business.IsPublic)

	// Bot, then channel
	assert.Equal(t, 1, stub.createUserCalls)
	assert.Equal(t, 1, stub.createDialogCalls)

	var reloaded model.Business
	require.NoError(t, testDB.Where("business_id = ?", business.BusinessID).First(&reloaded).Error)
	assert.NotEmpty(t, reloaded.MessagingBotID)
	assert.NotEmpty(t, reloaded.MessagingChannelID)
	assert.True(t, reloaded.HasChannel())
}

func TestBusinessService_Create_SurvivesProvisioningFailure(t *testing.T) {
	svc, testDB, stub, owner := setupBusinessServiceTest(t)
	stub.srv.Close()

	business, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Flower Shop",
		Slug: "flower-shop",
	})
	require.NoError(t, err)

	var reloaded model.Business
	require.NoError(t, testDB.Where("business_id = ?", business.BusinessID).First(&reloaded).Error)
	assert.Empty(t, reloaded.MessagingBotID)
	assert.Empty(t, reloaded.MessagingChannelID)
}

func TestBusinessService_Create_InvalidSlug(t *testing.T) {
	svc, _, _, owner := setupBusinessServiceTest(t)

	for _, slug := range []string{"Flower Shop", "flower_shop", "FLOWERS", "café"} {
		_, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
			Name: "Flower Shop",
			Slug: slug,
		})
		assert.ErrorIs(t, err, ErrInvalidSlug, "slug %q", slug)
	}
}

func TestBusinessService_Create_DuplicateSlug(t *testing.T) {
	svc, _, _, owner := setupBusinessServiceTest(t)

	_, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Flower Shop",
		Slug: "flower-shop",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Another Shop",
		Slug: "flower-shop",
	})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestBusinessService_Update_OwnerOnly(t *testing.T) {
	svc, testDB, _, owner := setupBusinessServiceTest(t)

	other := &model.User{
		UserID:   "user_other",
		Phone:    "+15550002222",
		IsActive: true,
	}
	require.NoError(t, testDB.Create(other).Error)

	business, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Flower Shop",
		Slug: "flower-shop",
	})
	require.NoError(t, err)

	newName := "Renamed Shop"
	_, err = svc.Update(business.BusinessID, other.UserID, UpdateBusinessInput{Name: &newName})
	assert.ErrorIs(t, err, ErrAccessDenied)

	updated, err := svc.Update(business.BusinessID, owner.UserID, UpdateBusinessInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Shop", updated.Name)
	// Untouched fields survive
	assert.Equal(t, "flower-shop", updated.Slug)
}

func TestBusinessService_Update_SlugConflict(t *testing.T) {
	svc, _, _, owner := setupBusinessServiceTest(t)

	_, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Flower Shop",
		Slug: "flower-shop",
	})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Book Shop",
		Slug: "book-shop",
	})
	require.NoError(t, err)

	conflicting := "flower-shop"
	_, err = svc.Update(second.BusinessID, owner.UserID, UpdateBusinessInput{Slug: &conflicting})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestBusinessService_GetBySlug(t *testing.T) {
	svc, _, _, owner := setupBusinessServiceTest(t)

	created, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Flower Shop",
		Slug: "flower-shop",
	})
	require.NoError(t, err)

	business, err := svc.GetBySlug("flower-shop")
	require.NoError(t, err)
	assert.Equal(t, created.BusinessID, business.BusinessID)

	_, err = svc.GetBySlug("missing-slug")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestBusinessService_Deactivate(t *testing.T) {
	svc, _, _, owner := setupBusinessServiceTest(t)

	business, err := svc.Create(context.Background(), owner.UserID, CreateBusinessInput{
		Name: "Flower Shop",
		Slug: "flower-shop",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(business.BusinessID, owner.UserID))

	_, err = svc.GetByID(business.BusinessID)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	_, err = svc.GetBySlug("flower-shop")
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	businesses, err := svc.List(owner.UserID)
	require.NoError(t, err)
	assert.Len(t, businesses, 0)
}
