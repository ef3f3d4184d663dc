// Package platform dispatches the Android install and settings intents.
package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"easyupdate-go/internal/logging"
)

var log = logging.L("platform")

const (
	// SDKNougat is the first level that rejects file:// URIs across apps.
	SDKNougat = 24
	// SDKOreo is the first level with the per-source install permission.
	SDKOreo = 26

	MimeAPK = "application/vnd.android.package-archive"

	ActionView                    = "android.intent.action.VIEW"
	ActionManageUnknownAppSources = "android.settings.MANAGE_UNKNOWN_APP_SOURCES"

	FlagActivityNewTask        = 0x10000000
	FlagGrantReadURIPermission = 0x00000001
)

// Intent is the subset of an Android intent the updater needs.
type Intent struct {
	Action   string
	Data     string
	MimeType string
	Flags    int
}

// Launcher starts an activity for an intent.
type Launcher interface {
	Launch(ctx context.Context, intent Intent) error
}

// ShellLauncher starts intents through the activity manager command.
type ShellLauncher struct {
	Command string // defaults to "am"
}

func (s ShellLauncher) Launch(ctx context.Context, intent Intent) error {
	cmd := s.Command
	if cmd == "" {
		cmd = "am"
	}
	args := buildArgs(intent)
	log.Printf("Running: %s %s", cmd, strings.Join(args, " "))

	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s start failed: %w (output: %s)", cmd, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func buildArgs(intent Intent) []string {
	args := []string{"start", "-a", intent.Action}
	if intent.Data != "" {
		args = append(args, "-d", intent.Data)
	}
	if intent.MimeType != "" {
		args = append(args, "-t", intent.MimeType)
	}
	if intent.Flags != 0 {
		args = append(args, "-f", fmt.Sprintf("0x%08x", intent.Flags))
	}
	return args
}
