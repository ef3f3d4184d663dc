package controller

import (
	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/i18n"
	"easyupdate-go/internal/logging"

	"go.uber.org/multierr"
)

// requestInstallPermission runs on the foreground once the user accepted.
func (u *Updater) requestInstallPermission(r *run) {
	if !u.platform.NeedsInstallPermission() {
		u.startDownload(r)
		return
	}

	u.setState(r, StatePermissionNeeded)
	u.ui.ShowPermissionDialog(func() {
		if err := u.platform.OpenInstallSettings(); err != nil {
			log.Error("failed to open install settings", logging.KeyRunID, r.id, logging.KeyError, err)
		}
		u.recordInBackground(r, StatePermissionNeeded)
	}, func() {
		u.setState(r, StatePermissionDenied)
		u.recordInBackground(r, StatePermissionDenied)
	})
}

// startDownload runs on the foreground.
func (u *Updater) startDownload(r *run) {
	if !u.downloadSem.TryAcquire(1) {
		u.surface(r, cstmerr.ErrDownloadInProgress, i18n.KeyDownloadError)
		return
	}
	u.setState(r, StateDownloading)
	u.ui.ShowDownloadProgress(0)

	u.wg.Go(func() {
		defer u.downloadSem.Release(1)
		u.download(r)
	})
}

func (u *Updater) download(r *run) {
	path := u.cache.Path(r.info.VersionName)

	if u.cache.Exists(path) {
		if err := u.cache.Validate(path); err == nil {
			log.Info("reusing cached artifact", logging.KeyRunID, r.id, logging.KeyPath, path)
			u.install(r, path)
			return
		}
		log.Warn("cached artifact is corrupt, deleting", logging.KeyRunID, r.id, logging.KeyPath, path)
		if err := u.cache.Remove(path); err != nil {
			u.failDownload(r, err)
			return
		}
	}

	if r.ctx.Err() != nil {
		return
	}

	f, err := u.cache.Create(path)
	if err != nil {
		u.failDownload(r, err)
		return
	}
	_, err = u.api.DownloadFile(r.ctx, r.info.DownloadURL, u.request.Headers, f, func(downloaded, total int64) {
		if total <= 0 {
			return
		}
		percent := int(downloaded * 100 / total)
		u.onMain(r, func() { u.ui.ShowDownloadProgress(percent) })
	})
	err = multierr.Append(err, f.Close())
	if err != nil {
		// The partial file stays on disk; the next run finds it corrupt.
		u.failDownload(r, err)
		return
	}

	u.setState(r, StateValidating)
	if err := u.cache.Validate(path); err != nil {
		err = multierr.Append(err, u.cache.Remove(path))
		log.Error("downloaded artifact failed validation", logging.KeyRunID, r.id, logging.KeyPath, path, logging.KeyError, err)
		u.setState(r, StateInvalid)
		u.record(r, StateInvalid, err, "")
		u.onMain(r, func() {
			u.ui.DismissDownloadProgress()
			u.surface(r, err, i18n.KeyParseError)
		})
		return
	}

	u.install(r, path)
}

// install runs on the background task.
func (u *Updater) install(r *run, path string) {
	u.onMain(r, u.ui.DismissDownloadProgress)
	if r.ctx.Err() != nil {
		return
	}

	u.setState(r, StateInstalling)
	digest, err := u.cache.Digest(path)
	if err != nil {
		log.Warn("could not hash artifact", logging.KeyPath, path, logging.KeyError, err)
	}
	if err := u.platform.Install(path); err != nil {
		u.setState(r, StateFailed)
		u.record(r, StateFailed, err, digest)
		u.onMain(r, func() { u.surface(r, err, i18n.KeyInstallError) })
		return
	}
	log.Info("installer dispatched", logging.KeyRunID, r.id, logging.KeyVersion, r.info.VersionName, "sha256", digest)
	u.record(r, StateInstalling, nil, digest)
}

func (u *Updater) failDownload(r *run, err error) {
	log.Error("download failed", logging.KeyRunID, r.id, logging.KeyURL, r.info.DownloadURL, logging.KeyError, err)
	u.setState(r, StateFailed)
	u.record(r, StateFailed, err, "")
	u.onMain(r, func() {
		u.ui.DismissDownloadProgress()
		u.surface(r, err, i18n.KeyDownloadError)
	})
}

// surface reports a download phase error. It runs on the foreground and does
// not depend on Manual.
func (u *Updater) surface(r *run, err error, key string) {
	if r.opts.OnError != nil {
		r.opts.OnError(err)
		return
	}
	u.ui.ShowError(err, u.printer.Sprintf(key)+": "+err.Error())
}
