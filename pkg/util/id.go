package util

import (
	"strings"

	"github.com/google/uuid"
)

// Entity identifiers are short prefixed strings (user_..., biz_..., dlg_...).
// The prefix makes logs and the metadata tags stored with external dialogs
// self-describing.

func NewUserID() string {
	return newID("user")
}

func NewBusinessID() string {
	return newID("biz")
}

func NewDialogID() string {
	return newID("dlg")
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
