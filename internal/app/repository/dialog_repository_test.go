package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/db"
)

func setupDialogRepoTest(t *testing.T) (DialogRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewDialogRepository(testDB), testDB
}

func newDialog(dialogID, businessID, userID string) *model.Dialog {
	return &model.Dialog{
		DialogID:          dialogID,
		BusinessID:        businessID,
		UserID:            userID,
		OwnerID:           "user_owner",
		MessagingDialogID: "ext_" + dialogID,
		LastMessageAt:     time.Now(),
		IsActive:          true,
	}
}

func TestDialogRepository_ActivePairIsUnique(t *testing.T) {
	repo, _ := setupDialogRepoTest(t)

	require.NoError(t, repo.Create(newDialog("dlg_1", "biz_1", "user_1")))

	// Same active pair is rejected by the partial unique index
	err := repo.Create(newDialog("dlg_2", "biz_1", "user_1"))
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	// Other pairs are fine
	require.NoError(t, repo.Create(newDialog("dlg_3", "biz_1", "user_2")))
	require.NoError(t, repo.Create(newDialog("dlg_4", "biz_2", "user_1")))
}

func TestDialogRepository_InactiveRowDoesNotBlockNewPair(t *testing.T) {
	repo, testDB := setupDialogRepoTest(t)

	require.NoError(t, repo.Create(newDialog("dlg_1", "biz_1", "user_1")))
	require.NoError(t, testDB.Model(&model.Dialog{}).
		Where("dialog_id = ?", "dlg_1").
		Update("is_active", false).Error)

	require.NoError(t, repo.Create(newDialog("dlg_2", "biz_1", "user_1")))
}

func TestDialogRepository_FindActivePair(t *testing.T) {
	repo, _ := setupDialogRepoTest(t)

	found, err := repo.FindActivePair("biz_1", "user_1")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repo.Create(newDialog("dlg_1", "biz_1", "user_1")))

	found, err = repo.FindActivePair("biz_1", "user_1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "dlg_1", found.DialogID)
}

func TestDialogRepository_UnreadCounters(t *testing.T) {
	repo, testDB := setupDialogRepoTest(t)

	require.NoError(t, repo.Create(newDialog("dlg_1", "biz_1", "user_1")))

	require.NoError(t, repo.IncrementUnread("dlg_1", true))
	require.NoError(t, repo.IncrementUnread("dlg_1", true))
	require.NoError(t, repo.IncrementUnread("dlg_1", false))

	var dialog model.Dialog
	require.NoError(t, testDB.Where("dialog_id = ?", "dlg_1").First(&dialog).Error)
	assert.Equal(t, 2, dialog.UnreadCountOwner)
	assert.Equal(t, 1, dialog.UnreadCountUser)

	require.NoError(t, repo.ResetUnread("dlg_1", true))
	require.NoError(t, testDB.Where("dialog_id = ?", "dlg_1").First(&dialog).Error)
	assert.Equal(t, 0, dialog.UnreadCountOwner)
	assert.Equal(t, 1, dialog.UnreadCountUser)
}

func TestDialogRepository_ListActiveByUser_OrderedByActivity(t *testing.T) {
	repo, testDB := setupDialogRepoTest(t)

	old := newDialog("dlg_old", "biz_1", "user_1")
	old.LastMessageAt = time.Now().Add(-time.Hour)
	recent := newDialog("dlg_recent", "biz_2", "user_1")
	recent.LastMessageAt = time.Now()
	require.NoError(t, repo.Create(old))
	require.NoError(t, repo.Create(recent))

	// Inactive dialogs are hidden
	inactive := newDialog("dlg_inactive", "biz_3", "user_1")
	require.NoError(t, repo.Create(inactive))
	require.NoError(t, testDB.Model(&model.Dialog{}).
		Where("dialog_id = ?", "dlg_inactive").
		Update("is_active", false).Error)

	dialogs, err := repo.ListActiveByUser("user_1", 10, 0)
	require.NoError(t, err)
	require.Len(t, dialogs, 2)
	assert.Equal(t, "dlg_recent", dialogs[0].DialogID)
	assert.Equal(t, "dlg_old", dialogs[1].DialogID)
}

func TestDialogRepository_ListActiveByBusiness_Filter(t *testing.T) {
	repo, _ := setupDialogRepoTest(t)

	require.NoError(t, repo.Create(newDialog("dlg_1", "biz_1", "user_1")))
	require.NoError(t, repo.Create(newDialog("dlg_2", "biz_1", "user_2")))

	all, err := repo.ListActiveByBusiness("biz_1", nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.ListActiveByBusiness("biz_1", []string{"user_2"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "user_2", filtered[0].UserID)
}

func TestDialogRepository_UpdateLastMessageAt(t *testing.T) {
	repo, testDB := setupDialogRepoTest(t)

	dialog := newDialog("dlg_1", "biz_1", "user_1")
	dialog.LastMessageAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(dialog))

	at := time.Now()
	require.NoError(t, repo.UpdateLastMessageAt("dlg_1", at))

	var reloaded model.Dialog
	require.NoError(t, testDB.Where("dialog_id = ?", "dlg_1").First(&reloaded).Error)
	assert.WithinDuration(t, at, reloaded.LastMessageAt, time.Second)
}
