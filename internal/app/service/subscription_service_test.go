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

type subscriptionTestEnv struct {
	service  SubscriptionService
	db       *gorm.DB
	stub     *messagingStub
	user     *model.User
	owner    *model.User
	business *model.Business
}

func setupSubscriptionServiceTest(t *testing.T) *subscriptionTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	stub, client := newMessagingStub(t)

	userRepo := repository.NewUserRepository(testDB)
	businessRepo := repository.NewBusinessRepository(testDB)
	subscriptionRepo := repository.NewSubscriptionRepository(testDB)
	svc := NewSubscriptionService(subscriptionRepo, businessRepo, userRepo, client)

	user := &model.User{
		UserID:          "user_fan",
		Phone:           "+15550001111",
		Name:            "Fan",
		MessagingUserID: "mu_fan",
		IsActive:        true,
	}
	owner := &model.User{
		UserID:          "user_owner",
		Phone:           "+15550002222",
		Name:            "Owner",
		MessagingUserID: "mu_owner",
		IsActive:        true,
	}
	require.NoError(t, testDB.Create(user).Error)
	require.NoError(t, testDB.Create(owner).Error)

	business := &model.Business{
		BusinessID:         "biz_bakery",
		OwnerID:            owner.UserID,
		Name:               "Bakery",
		Slug:               "bakery",
		MessagingBotID:     "mu_bot",
		MessagingChannelID: "ext_channel",
		IsPublic:           true,
		IsActive:           true,
	}
	require.NoError(t, testDB.Create(business).Error)

	return &subscriptionTestEnv{
		service:  svc,
		db:       testDB,
		stub:     stub,
		user:     user,
		owner:    owner,
		business: business,
	}
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	env := setupSubscriptionServiceTest(t)

	subscription, err := env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)
	assert.True(t, subscription.IsActive)
	assert.False(t, subscription.SubscribedAt.IsZero())
	// The subscriber was mirrored into the broadcast channel
	assert.Equal(t, 1, env.stub.addMemberCalls)
}

func TestSubscriptionService_Subscribe_Duplicate(t *testing.T) {
	env := setupSubscriptionServiceTest(t)

	_, err := env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)

	_, err = env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestSubscriptionService_Subscribe_NoChannelSkipsMirror(t *testing.T) {
	env := setupSubscriptionServiceTest(t)

	bare := &model.Business{
		BusinessID: "biz_bare",
		OwnerID:    env.owner.UserID,
		Name:       "No Channel Yet",
		Slug:       "no-channel-yet",
		IsPublic:   true,
		IsActive:   true,
	}
	require.NoError(t, env.db.Create(bare).Error)

	_, err := env.service.Subscribe(context.Background(), bare.BusinessID, env.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, env.stub.addMemberCalls)
}

func TestSubscriptionService_Subscribe_MirrorFailureSwallowed(t *testing.T) {
	env := setupSubscriptionServiceTest(t)
	env.stub.srv.Close()

	subscription, err := env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)
	assert.True(t, subscription.IsActive)
}

func TestSubscriptionService_Unsubscribe_AndResubscribe(t *testing.T) {
	env := setupSubscriptionServiceTest(t)

	_, err := env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)

	require.NoError(t, env.service.Unsubscribe(env.business.BusinessID, env.user.UserID))

	// Second unsubscribe finds nothing
	err = env.service.Unsubscribe(env.business.BusinessID, env.user.UserID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	// Resubscribing creates a fresh row, the old one stays as history
	_, err = env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)

	var count int64
	env.db.Model(&model.Subscription{}).
		Where("business_id = ? AND user_id = ?", env.business.BusinessID, env.user.UserID).
		Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSubscriptionService_ListForUser(t *testing.T) {
	env := setupSubscriptionServiceTest(t)

	_, err := env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)

	businesses, err := env.service.ListForUser(env.user.UserID)
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Equal(t, env.business.BusinessID, businesses[0].BusinessID)
}

func TestSubscriptionService_ListSubscribers_OwnerOnly(t *testing.T) {
	env := setupSubscriptionServiceTest(t)

	_, err := env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)

	subscribers, err := env.service.ListSubscribers(env.business.BusinessID, env.owner.UserID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, env.user.UserID, subscribers[0].UserID)
	assert.Equal(t, "Fan", subscribers[0].UserName)

	_, err = env.service.ListSubscribers(env.business.BusinessID, env.user.UserID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSubscriptionService_ExportSubscribers(t *testing.T) {
	env := setupSubscriptionServiceTest(t)

	_, err := env.service.Subscribe(context.Background(), env.business.BusinessID, env.user.UserID)
	require.NoError(t, err)

	data, filename, err := env.service.ExportSubscribers(env.business.BusinessID, env.owner.UserID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, filename, "bakery-subscribers-")
	assert.Contains(t, filename, ".xlsx")
}
