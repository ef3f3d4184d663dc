package platform

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"easyupdate-go/internal/cstmerr"
)

const launchTimeout = 10 * time.Second

// Device describes the host the installer runs on.
type Device struct {
	SDKInt      int
	PackageName string
	Launcher    Launcher
	// InstallAllowed reports whether this package may install other
	// packages. Nil means allowed.
	InstallAllowed func() bool
}

// NeedsInstallPermission is always false before SDKOreo.
func (d *Device) NeedsInstallPermission() bool {
	if d.SDKInt < SDKOreo {
		return false
	}
	if d.InstallAllowed == nil {
		return false
	}
	return !d.InstallAllowed()
}

// OpenInstallSettings opens the unknown-sources screen for this package. The
// user comes back on their own; nothing is re-checked.
func (d *Device) OpenInstallSettings() error {
	return d.launch(Intent{
		Action: ActionManageUnknownAppSources,
		Data:   "package:" + d.PackageName,
		Flags:  FlagActivityNewTask,
	})
}

// Install hands the artifact at path to the system package installer.
func (d *Device) Install(path string) error {
	intent := d.InstallIntent(path)
	log.Printf("Dispatching installer for %s (sdk %d)", path, d.SDKInt)
	if err := d.launch(intent); err != nil {
		return cstmerr.NewInstallError(fmt.Sprintf("could not start installer for %s", path), err)
	}
	return nil
}

// InstallIntent builds the view intent for path. From SDKNougat on the file is
// exposed through the package's content provider.
func (d *Device) InstallIntent(path string) Intent {
	intent := Intent{
		Action:   ActionView,
		MimeType: MimeAPK,
		Flags:    FlagActivityNewTask,
	}
	if d.SDKInt >= SDKNougat {
		intent.Data = d.ContentURI(path)
		intent.Flags |= FlagGrantReadURIPermission
	} else {
		intent.Data = (&url.URL{Scheme: "file", Path: path}).String()
	}
	return intent
}

// ContentURI maps path onto the updater's file provider authority.
func (d *Device) ContentURI(path string) string {
	u := url.URL{
		Scheme: "content",
		Host:   d.PackageName + ".easyupdater.provider",
		Path:   "/updates/" + filepath.Base(path),
	}
	return u.String()
}

func (d *Device) launch(intent Intent) error {
	if d.Launcher == nil {
		return fmt.Errorf("no launcher configured for %s", intent.Action)
	}
	ctx, cancel := context.WithTimeout(context.Background(), launchTimeout)
	defer cancel()
	return d.Launcher.Launch(ctx, intent)
}
