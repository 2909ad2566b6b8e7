package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/pkg/logger"
	"github.com/antirek/bank/pkg/messaging"
	"github.com/antirek/bank/pkg/util"
)

// DialogService coordinates 1:1 dialogs between customers and business
// owners. The local record is the source of truth for which dialogs exist
// and for the customer-side unread counter; message content and the owner's
// unread state live on the message service and are fetched at read time.
type DialogService interface {
	Start(ctx context.Context, businessID, userID string) (*DialogSummary, bool, error)
	ListForUser(ctx context.Context, userID string, page, limit int) ([]UserDialogEntry, error)
	ListForBusiness(ctx context.Context, businessID, ownerID string, page, limit int, search string) ([]BusinessDialogEntry, error)
	GetByID(dialogID, callerID string) (*DialogDetail, error)
	ListMessages(ctx context.Context, dialogID, callerID string, page, limit int, before *time.Time) (*DialogMessagePage, error)
	Send(ctx context.Context, dialogID, senderID, content string) (*SentMessage, error)
	MarkRead(dialogID, callerID string) (int, error)
}

type dialogService struct {
	dialogs    repository.DialogRepository
	businesses repository.BusinessRepository
	users      repository.UserRepository
	client     *messaging.Client
}

func NewDialogService(
	dialogs repository.DialogRepository,
	businesses repository.BusinessRepository,
	users repository.UserRepository,
	client *messaging.Client,
) DialogService {
	return &dialogService{
		dialogs:    dialogs,
		businesses: businesses,
		users:      users,
		client:     client,
	}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return limit, (page - 1) * limit
}

// Start opens the dialog between the given customer and business, creating
// it if it does not exist yet. The call is idempotent: repeating it returns
// the existing dialog. The external dialog is created before the local
// record so that a failed remote call leaves nothing behind locally.
func (s *dialogService) Start(ctx context.Context, businessID, userID string) (*DialogSummary, bool, error) {
	business, err := s.businesses.GetActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrBusinessNotFound
		}
		return nil, false, err
	}
	if business.OwnerID == userID {
		return nil, false, ErrAccessDenied
	}

	user, err := s.users.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}
	owner, err := s.users.GetByUserID(business.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrOwnerNotFound
		}
		return nil, false, err
	}

	// Both participants need a messaging identity before a dialog can be
	// created. Provisioning happens at login and via the periodic sweep,
	// never here.
	if !user.IsProvisioned() || !owner.IsProvisioned() {
		return nil, false, ErrNotProvisioned
	}

	dialog, created, err := findOrCreateMirrored(
		func() (*model.Dialog, error) {
			return s.dialogs.FindActivePair(businessID, userID)
		},
		func() (string, error) {
			remoteID, err := s.client.CreateDialog(ctx, messaging.CreateDialogRequest{
				Name:      business.Name,
				CreatedBy: user.MessagingUserID,
				Members: []messaging.Member{
					{UserID: user.MessagingUserID, Type: messaging.KindUser, Name: user.DisplayName()},
					{UserID: owner.MessagingUserID, Type: messaging.KindUser, Name: owner.DisplayName()},
				},
				Meta: map[string]interface{}{
					"type":       "business_client",
					"businessId": business.BusinessID,
					"userId":     user.UserID,
					"ownerId":    owner.UserID,
				},
			})
			if err != nil {
				if messaging.IsUnavailable(err) {
					return "", ErrUpstreamUnavailable
				}
				return "", err
			}
			return remoteID, nil
		},
		func(remoteID string) (*model.Dialog, error) {
			dialog := &model.Dialog{
				DialogID:          util.NewDialogID(),
				BusinessID:        business.BusinessID,
				UserID:            user.UserID,
				OwnerID:           owner.UserID,
				MessagingDialogID: remoteID,
				LastMessageAt:     time.Now(),
			}
			if err := s.dialogs.Create(dialog); err != nil {
				return nil, err
			}
			return dialog, nil
		},
	)
	if err != nil {
		return nil, false, err
	}

	if created {
		logger.Info("dialog created", map[string]interface{}{
			"dialog_id":           dialog.DialogID,
			"business_id":         business.BusinessID,
			"user_id":             user.UserID,
			"messaging_dialog_id": dialog.MessagingDialogID,
		})
	}

	return &DialogSummary{
		DialogID:          dialog.DialogID,
		MessagingDialogID: dialog.MessagingDialogID,
		BusinessID:        business.BusinessID,
		BusinessName:      business.Name,
		BusinessSlug:      business.Slug,
		OwnerID:           owner.UserID,
		OwnerName:         owner.DisplayName(),
		CreatedAt:         dialog.CreatedAt,
	}, created, nil
}

// ListForUser returns the customer's dialogs, most recently active first.
// Last messages are fetched from the message service per row; a failed fetch
// leaves the row without one instead of failing the list.
func (s *dialogService) ListForUser(ctx context.Context, userID string, page, limit int) ([]UserDialogEntry, error) {
	limit, offset := normalizePage(page, limit)
	dialogs, err := s.dialogs.ListActiveByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}

	businessIDs := make([]string, 0, len(dialogs))
	for _, d := range dialogs {
		businessIDs = append(businessIDs, d.BusinessID)
	}
	businesses, err := s.businesses.ListByBusinessIDs(businessIDs)
	if err != nil {
		return nil, err
	}
	businessByID := make(map[string]model.Business, len(businesses))
	for _, b := range businesses {
		businessByID[b.BusinessID] = b
	}

	entries := make([]UserDialogEntry, 0, len(dialogs))
	for _, d := range dialogs {
		entry := UserDialogEntry{
			DialogID:      d.DialogID,
			BusinessID:    d.BusinessID,
			LastMessageAt: d.LastMessageAt,
			UnreadCount:   d.UnreadCountUser,
		}
		if b, ok := businessByID[d.BusinessID]; ok {
			entry.BusinessName = b.Name
			entry.BusinessSlug = b.Slug
		}
		entry.LastMessage = s.fetchLastMessage(ctx, d.MessagingDialogID)
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListForBusiness returns the owner's customer dialogs for one business. The
// unread count per row comes from the message service's member state for the
// owner; when that lookup fails the row shows zero rather than a stale local
// number.
func (s *dialogService) ListForBusiness(ctx context.Context, businessID, ownerID string, page, limit int, search string) ([]BusinessDialogEntry, error) {
	business, err := s.businesses.GetActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if business.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}
	owner, err := s.users.GetByUserID(ownerID)
	if err != nil {
		return nil, err
	}

	var filterIDs []string
	if search = strings.TrimSpace(search); search != "" {
		matched, err := s.users.SearchActive(search)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			return []BusinessDialogEntry{}, nil
		}
		filterIDs = make([]string, 0, len(matched))
		for _, u := range matched {
			filterIDs = append(filterIDs, u.UserID)
		}
	}

	limit, offset := normalizePage(page, limit)
	dialogs, err := s.dialogs.ListActiveByBusiness(businessID, filterIDs, limit, offset)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(dialogs))
	for _, d := range dialogs {
		userIDs = append(userIDs, d.UserID)
	}
	users, err := s.users.ListByUserIDs(userIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[string]model.User, len(users))
	for _, u := range users {
		userByID[u.UserID] = u
	}

	entries := make([]BusinessDialogEntry, 0, len(dialogs))
	for _, d := range dialogs {
		entry := BusinessDialogEntry{
			DialogID:      d.DialogID,
			UserID:        d.UserID,
			LastMessageAt: d.LastMessageAt,
		}
		if u, ok := userByID[d.UserID]; ok {
			entry.UserName = u.DisplayName()
			entry.UserPhone = u.Phone
		}
		if owner.IsProvisioned() {
			unread, err := s.client.GetMemberUnread(ctx, d.MessagingDialogID, owner.MessagingUserID)
			if err != nil {
				logger.Warn("member unread fetch failed", map[string]interface{}{
					"dialog_id": d.DialogID,
					"error":     err.Error(),
				})
			} else {
				entry.UnreadCount = unread
			}
		}
		entry.LastMessage = s.fetchLastMessage(ctx, d.MessagingDialogID)
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *dialogService) fetchLastMessage(ctx context.Context, messagingDialogID string) *LastMessage {
	page, err := s.client.ListMessages(ctx, messagingDialogID, messaging.ListMessagesOptions{Page: 1, Limit: 1})
	if err != nil {
		logger.Warn("last message fetch failed", map[string]interface{}{
			"messaging_dialog_id": messagingDialogID,
			"error":               err.Error(),
		})
		return nil
	}
	if len(page.Messages) == 0 {
		return nil
	}
	msg := page.Messages[0]
	return &LastMessage{
		Content:   msg.Content,
		SenderID:  s.resolveSenderID(msg.SenderID),
		CreatedAt: msg.CreatedAt,
	}
}

// resolveSenderID maps a messaging identity back to the local user id when
// one exists, otherwise returns the raw id.
func (s *dialogService) resolveSenderID(messagingID string) string {
	users, err := s.users.ListByMessagingIDs([]string{messagingID})
	if err == nil && len(users) == 1 {
		return users[0].UserID
	}
	return messagingID
}

func (s *dialogService) getParticipantDialog(dialogID, callerID string) (*model.Dialog, error) {
	dialog, err := s.dialogs.GetActiveByDialogID(dialogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDialogNotFound
		}
		return nil, err
	}
	if !dialog.IsParticipant(callerID) {
		return nil, ErrAccessDenied
	}
	return dialog, nil
}

func (s *dialogService) GetByID(dialogID, callerID string) (*DialogDetail, error) {
	dialog, err := s.getParticipantDialog(dialogID, callerID)
	if err != nil {
		return nil, err
	}

	detail := &DialogDetail{
		DialogID:          dialog.DialogID,
		MessagingDialogID: dialog.MessagingDialogID,
		BusinessID:        dialog.BusinessID,
		UserID:            dialog.UserID,
		OwnerID:           dialog.OwnerID,
		CreatedAt:         dialog.CreatedAt,
	}
	if business, err := s.businesses.GetByBusinessID(dialog.BusinessID); err == nil {
		detail.BusinessName = business.Name
		detail.BusinessSlug = business.Slug
	}
	if user, err := s.users.GetByUserID(dialog.UserID); err == nil {
		detail.UserName = user.DisplayName()
		detail.UserPhone = user.Phone
	}
	if owner, err := s.users.GetByUserID(dialog.OwnerID); err == nil {
		detail.OwnerName = owner.DisplayName()
	}
	return detail, nil
}

// ListMessages fetches one page of the dialog's messages from the message
// service and returns it oldest-first. The service pages newest-first;
// reversing each fetched page keeps rendering order chronological.
func (s *dialogService) ListMessages(ctx context.Context, dialogID, callerID string, page, limit int, before *time.Time) (*DialogMessagePage, error) {
	dialog, err := s.getParticipantDialog(dialogID, callerID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	remote, err := s.client.ListMessages(ctx, dialog.MessagingDialogID, messaging.ListMessagesOptions{
		Page:   page,
		Limit:  limit,
		Before: before,
	})
	if err != nil {
		if messaging.IsUnavailable(err) {
			return nil, ErrUpstreamUnavailable
		}
		return nil, err
	}

	senderIDs := make([]string, 0, len(remote.Messages))
	seen := make(map[string]bool, 2)
	for _, m := range remote.Messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	senders := make(map[string]model.User, len(senderIDs))
	if len(senderIDs) > 0 {
		users, err := s.users.ListByMessagingIDs(senderIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			senders[u.MessagingUserID] = u
		}
	}

	messages := make([]DialogMessage, 0, len(remote.Messages))
	for i := len(remote.Messages) - 1; i >= 0; i-- {
		m := remote.Messages[i]
		entry := DialogMessage{
			MessageID: m.MessageID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Type:      m.Type,
			CreatedAt: m.CreatedAt,
		}
		if u, ok := senders[m.SenderID]; ok {
			entry.SenderID = u.UserID
			entry.SenderName = u.DisplayName()
		}
		entry.Status = "sent"
		if len(m.Statuses) > 0 && m.Statuses[0].Status != "" {
			entry.Status = m.Statuses[0].Status
		}
		messages = append(messages, entry)
	}

	return &DialogMessagePage{
		Messages: messages,
		HasMore:  remote.HasMore,
		Total:    remote.Total,
	}, nil
}

// Send posts a message into the dialog on behalf of a participant. The
// message service stores the message; afterwards the recipient's local
// unread counter and the dialog's activity timestamp are updated. Those
// follow-up writes are best-effort: a stored message is acknowledged even
// when a counter update fails.
func (s *dialogService) Send(ctx context.Context, dialogID, senderID, content string) (*SentMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	dialog, err := s.getParticipantDialog(dialogID, senderID)
	if err != nil {
		return nil, err
	}
	sender, err := s.users.GetByUserID(senderID)
	if err != nil {
		return nil, err
	}
	if !sender.IsProvisioned() {
		return nil, ErrNotProvisioned
	}

	receipt, err := s.client.PostMessage(ctx, dialog.MessagingDialogID, messaging.PostMessageRequest{
		SenderID: sender.MessagingUserID,
		Content:  content,
		Type:     messaging.MessageTypeText,
	})
	if err != nil {
		if messaging.IsUnavailable(err) {
			return nil, ErrUpstreamUnavailable
		}
		return nil, err
	}

	// The customer sent it, so the owner's counter grows, and vice versa.
	recipientIsOwner := senderID == dialog.UserID
	if err := s.dialogs.IncrementUnread(dialog.DialogID, recipientIsOwner); err != nil {
		logger.Error("unread increment failed", err, map[string]interface{}{
			"dialog_id": dialog.DialogID,
		})
	}
	if err := s.dialogs.UpdateLastMessageAt(dialog.DialogID, receipt.CreatedAt); err != nil {
		logger.Error("last message timestamp update failed", err, map[string]interface{}{
			"dialog_id": dialog.DialogID,
		})
	}

	return &SentMessage{
		MessageID: receipt.MessageID,
		DialogID:  dialog.DialogID,
		SenderID:  senderID,
		Content:   content,
		Type:      messaging.MessageTypeText,
		CreatedAt: receipt.CreatedAt,
	}, nil
}

// MarkRead zeroes the caller's own unread counter and returns the counter's
// new value. This is a local operation; the message service keeps its own
// per-member read state.
func (s *dialogService) MarkRead(dialogID, callerID string) (int, error) {
	dialog, err := s.getParticipantDialog(dialogID, callerID)
	if err != nil {
		return 0, err
	}

	ownerSide := callerID != dialog.UserID
	if err := s.dialogs.ResetUnread(dialog.DialogID, ownerSide); err != nil {
		return 0, err
	}
	return 0, nil
}
