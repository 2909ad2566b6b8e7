package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/pkg/logger"
	"github.com/antirek/bank/pkg/messaging"
)

// SubscriptionService maintains the follow relation between users and
// businesses. Subscribing mirrors the user into the business's broadcast
// channel on the message service when one exists; unsubscribing only
// deactivates the local row and deliberately leaves the channel membership
// in place.
type SubscriptionService interface {
	Subscribe(ctx context.Context, businessID, userID string) (*model.Subscription, error)
	Unsubscribe(businessID, userID string) error
	ListForUser(userID string) ([]model.Business, error)
	ListSubscribers(businessID, ownerID string) ([]SubscriberEntry, error)
	ExportSubscribers(businessID, ownerID string) ([]byte, string, error)
}

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	businesses    repository.BusinessRepository
	users         repository.UserRepository
	client        *messaging.Client
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	businesses repository.BusinessRepository,
	users repository.UserRepository,
	client *messaging.Client,
) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		businesses:    businesses,
		users:         users,
		client:        client,
	}
}

// Subscribe creates an active subscription. A second subscribe while one is
// active is a conflict; subscribing again after an unsubscribe creates a new
// row. Channel membership is mirrored after the row exists and never fails
// the call.
func (s *subscriptionService) Subscribe(ctx context.Context, businessID, userID string) (*model.Subscription, error) {
	business, err := s.businesses.GetActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	user, err := s.users.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.subscriptions.FindActive(businessID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadySubscribed
	}

	subscription := &model.Subscription{
		BusinessID:   businessID,
		UserID:       userID,
		SubscribedAt: time.Now(),
		IsActive:     true,
	}
	if err := s.subscriptions.Create(subscription); err != nil {
		// A concurrent subscribe won after our lookup.
		if repository.IsDuplicateKey(err) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	s.mirrorChannelMember(ctx, business, user)
	return subscription, nil
}

// mirrorChannelMember adds the subscriber to the business's broadcast
// channel. Skipped when the business has no channel or the user holds no
// messaging identity; failures are logged and swallowed.
func (s *subscriptionService) mirrorChannelMember(ctx context.Context, business *model.Business, user *model.User) {
	if !business.HasChannel() || !user.IsProvisioned() {
		return
	}
	err := s.client.AddMember(ctx, business.MessagingChannelID, messaging.Member{
		UserID: user.MessagingUserID,
		Type:   messaging.KindUser,
		Name:   user.DisplayName(),
	})
	if err != nil {
		logger.Warn("channel member mirror failed", map[string]interface{}{
			"business_id":          business.BusinessID,
			"user_id":              user.UserID,
			"messaging_channel_id": business.MessagingChannelID,
			"error":                err.Error(),
		})
	}
}

// Unsubscribe deactivates the active subscription. The channel membership on
// the message service is left untouched so the subscriber keeps the dialog
// history.
func (s *subscriptionService) Unsubscribe(businessID, userID string) error {
	deactivated, err := s.subscriptions.DeactivateActive(businessID, userID)
	if err != nil {
		return err
	}
	if !deactivated {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ListForUser returns the businesses the user currently follows.
func (s *subscriptionService) ListForUser(userID string) ([]model.Business, error) {
	subscriptions, err := s.subscriptions.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	businessIDs := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		businessIDs = append(businessIDs, sub.BusinessID)
	}
	return s.businesses.ListByBusinessIDs(businessIDs)
}

func (s *subscriptionService) subscriberEntries(businessID, ownerID string) ([]SubscriberEntry, *model.Business, error) {
	business, err := s.businesses.GetActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBusinessNotFound
		}
		return nil, nil, err
	}
	if business.OwnerID != ownerID {
		return nil, nil, ErrAccessDenied
	}

	subscriptions, err := s.subscriptions.ListActiveByBusiness(businessID)
	if err != nil {
		return nil, nil, err
	}
	userIDs := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		userIDs = append(userIDs, sub.UserID)
	}
	users, err := s.users.ListByUserIDs(userIDs)
	if err != nil {
		return nil, nil, err
	}
	userByID := make(map[string]model.User, len(users))
	for _, u := range users {
		userByID[u.UserID] = u
	}

	entries := make([]SubscriberEntry, 0, len(subscriptions))
	for _, sub := range subscriptions {
		entry := SubscriberEntry{
			UserID:       sub.UserID,
			SubscribedAt: sub.SubscribedAt,
		}
		if u, ok := userByID[sub.UserID]; ok {
			entry.UserName = u.DisplayName()
			entry.UserPhone = u.Phone
		}
		entries = append(entries, entry)
	}
	return entries, business, nil
}

// ListSubscribers returns the active subscribers of the owner's business.
func (s *subscriptionService) ListSubscribers(businessID, ownerID string) ([]SubscriberEntry, error) {
	entries, _, err := s.subscriberEntries(businessID, ownerID)
	return entries, err
}

// ExportSubscribers renders the subscriber list as an XLSX workbook and
// returns its bytes together with a suggested file name.
func (s *subscriptionService) ExportSubscribers(businessID, ownerID string) ([]byte, string, error) {
	entries, business, err := s.subscriberEntries(businessID, ownerID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Subscribers"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Phone", "Subscribed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, entry := range entries {
		values := []interface{}{
			entry.UserName,
			entry.UserPhone,
			entry.SubscribedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	f.SetColWidth(sheet, "A", "C", 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("%s-subscribers-%s.xlsx", business.Slug, time.Now().Format("20060102"))
	return buf.Bytes(), name, nil
}
