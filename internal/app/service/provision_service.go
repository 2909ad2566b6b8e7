package service

import (
	"context"

	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/pkg/logger"
	"github.com/antirek/bank/pkg/messaging"
)

// ProvisionService attaches message-service identities to local records.
// Provisioning is best-effort everywhere it is called: a failure leaves the
// record without an identity and the periodic sweeps retry later.
type ProvisionService interface {
	EnsureUser(ctx context.Context, user *model.User) (string, error)
	EnsureBusiness(ctx context.Context, business *model.Business) error
	SweepUsers(ctx context.Context)
	SweepBusinesses(ctx context.Context)
}

type provisionService struct {
	users      repository.UserRepository
	businesses repository.BusinessRepository
	client     *messaging.Client
}

func NewProvisionService(
	users repository.UserRepository,
	businesses repository.BusinessRepository,
	client *messaging.Client,
) ProvisionService {
	return &provisionService{
		users:      users,
		businesses: businesses,
		client:     client,
	}
}

const sweepBatchSize = 100

// EnsureUser registers the user with the message service and records the
// returned identity. Already provisioned users are returned as-is.
func (s *provisionService) EnsureUser(ctx context.Context, user *model.User) (string, error) {
	if user.IsProvisioned() {
		return user.MessagingUserID, nil
	}

	messagingID, err := s.client.CreateUser(ctx, messaging.CreateUserRequest{
		UserID: user.UserID,
		Name:   user.DisplayName(),
		Type:   messaging.KindUser,
	})
	if err != nil {
		return "", err
	}
	if err := s.users.SetMessagingUserID(user.UserID, messagingID); err != nil {
		return "", err
	}

	logger.Info("user provisioned", map[string]interface{}{
		"user_id":           user.UserID,
		"messaging_user_id": messagingID,
	})
	return messagingID, nil
}

// EnsureBusiness creates the business's bot identity and broadcast channel.
// The bot comes first and is persisted before the channel attempt, so a
// channel failure still leaves the bot recorded and the next attempt only
// has to finish the channel.
func (s *provisionService) EnsureBusiness(ctx context.Context, business *model.Business) error {
	botID := business.MessagingBotID
	if botID == "" {
		created, err := s.client.CreateUser(ctx, messaging.CreateUserRequest{
			UserID: business.BusinessID,
			Name:   business.Name,
			Type:   messaging.KindBot,
		})
		if err != nil {
			return err
		}
		botID = created
		if err := s.businesses.SetMessagingIDs(business.BusinessID, botID, business.MessagingChannelID); err != nil {
			return err
		}
		business.MessagingBotID = botID
	}

	if business.MessagingChannelID == "" {
		channelID, err := s.client.CreateDialog(ctx, messaging.CreateDialogRequest{
			Name:      business.Name,
			CreatedBy: botID,
			Members: []messaging.Member{
				{UserID: botID, Type: messaging.KindBot, Name: business.Name},
			},
			Meta: map[string]interface{}{
				"type":       "business_channel",
				"businessId": business.BusinessID,
			},
		})
		if err != nil {
			return err
		}
		if err := s.businesses.SetMessagingIDs(business.BusinessID, botID, channelID); err != nil {
			return err
		}
		business.MessagingChannelID = channelID

		logger.Info("business channel provisioned", map[string]interface{}{
			"business_id":          business.BusinessID,
			"messaging_bot_id":     botID,
			"messaging_channel_id": channelID,
		})
	}
	return nil
}

// SweepUsers retries provisioning for users still missing a messaging
// identity.
func (s *provisionService) SweepUsers(ctx context.Context) {
	users, err := s.users.ListUnprovisioned(sweepBatchSize)
	if err != nil {
		logger.Error("unprovisioned user sweep failed", err)
		return
	}
	for i := range users {
		if _, err := s.EnsureUser(ctx, &users[i]); err != nil {
			logger.Warn("user provisioning retry failed", map[string]interface{}{
				"user_id": users[i].UserID,
				"error":   err.Error(),
			})
		}
	}
}

// SweepBusinesses retries bot and channel creation for businesses still
// missing either.
func (s *provisionService) SweepBusinesses(ctx context.Context) {
	businesses, err := s.businesses.ListMissingMessaging(sweepBatchSize)
	if err != nil {
		logger.Error("unprovisioned business sweep failed", err)
		return
	}
	for i := range businesses {
		if err := s.EnsureBusiness(ctx, &businesses[i]); err != nil {
			logger.Warn("business provisioning retry failed", map[string]interface{}{
				"business_id": businesses[i].BusinessID,
				"error":       err.Error(),
			})
		}
	}
}
