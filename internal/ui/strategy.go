// Package ui defines how the updater talks to the user.
package ui

import "easyupdate-go/internal/shared"

// Strategy presents dialogs, progress and toasts. It never starts an action
// on its own; user decisions come back through the callbacks. All methods
// are called on the foreground dispatcher.
type Strategy interface {
	ShowCheckLoading()
	DismissCheckLoading()
	// ShowUpdateDialog must not offer a cancel path when info.IsForce is set.
	ShowUpdateDialog(info shared.UpdateInfo, onUpdate, onCancel func())
	ShowPermissionDialog(onGoToSetting, onCancel func())
	// ShowDownloadProgress receives a percentage in [0, 100].
	ShowDownloadProgress(percent int)
	DismissDownloadProgress()
	ShowError(err error, message string)
	ShowToast(message string)
}
