package controller

import (
	"context"
	"errors"
	"time"

	"easyupdate-go/internal/apiclient"
	"easyupdate-go/internal/artifact"
	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/i18n"
	"easyupdate-go/internal/logging"
	"easyupdate-go/internal/shared"
	"easyupdate-go/internal/ui"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/message"
)

var log = logging.L("controller")

const recordTimeout = 10 * time.Second

// CheckOptions tunes a single Check call.
type CheckOptions struct {
	// Manual checks show the loading indicator and report "no update" and
	// errors through the UI when no callback is given.
	Manual     bool
	OnNoUpdate func()
	OnError    func(error)
}

// Updater runs the check, download and install flow.
type Updater struct {
	request    apiclient.RequestConfig
	api        *apiclient.APIClient
	parser     Parser
	ui         ui.Strategy
	platform   Platform
	cache      *artifact.Cache
	dispatcher Dispatcher
	recorder   Recorder
	printer    *message.Printer

	checkSem    *semaphore.Weighted
	downloadSem *semaphore.Weighted
	state       atomic.Int32
	wg          conc.WaitGroup
}

// run carries one Check invocation through its steps.
type run struct {
	id   string
	ctx  context.Context
	opts CheckOptions
	info shared.UpdateInfo
}

// State returns the latest state reached.
func (u *Updater) State() State {
	return State(u.state.Load())
}

// Wait blocks until every background task started by Check has returned.
func (u *Updater) Wait() {
	u.wg.Wait()
}

// Check must be called from the foreground context. ctx scopes the whole
// run: once it is done no further UI call or callback happens. A second
// Check while one is still checking returns ErrCheckInProgress.
func (u *Updater) Check(ctx context.Context, opts CheckOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !u.checkSem.TryAcquire(1) {
		return cstmerr.ErrCheckInProgress
	}

	r := &run{id: uuid.NewString(), ctx: ctx, opts: opts}
	u.setState(r, StateChecking)
	if opts.Manual {
		u.ui.ShowCheckLoading()
	}

	u.wg.Go(func() {
		defer u.checkSem.Release(1)
		u.check(r)
	})
	return nil
}

func (u *Updater) check(r *run) {
	body, _, err := u.api.Exchange(r.ctx, &u.request)
	if err != nil {
		u.failCheck(r, err)
		return
	}

	info, err := u.parser.Parse(body)
	if err != nil {
		var parseErr *cstmerr.ParseError
		if !errors.As(err, &parseErr) {
			err = cstmerr.NewParseError("parser rejected check response", err)
		}
		u.failCheck(r, err)
		return
	}
	r.info = info

	if !info.HasUpdate {
		u.setState(r, StateNoUpdateFound)
		u.record(r, StateNoUpdateFound, nil, "")
		u.onMain(r, func() {
			if r.opts.Manual {
				u.ui.DismissCheckLoading()
			}
			if r.opts.OnNoUpdate != nil {
				r.opts.OnNoUpdate()
				return
			}
			if r.opts.Manual {
				u.ui.ShowToast(u.printer.Sprintf(i18n.KeyAlreadyLatest))
			}
		})
		return
	}

	log.Info("update available", logging.KeyRunID, r.id, logging.KeyVersion, info.VersionName, "force", info.IsForce)
	u.setState(r, StateUpdateFound)
	u.onMain(r, func() {
		if r.opts.Manual {
			u.ui.DismissCheckLoading()
		}
		u.setState(r, StateAwaitingUserDecision)
		u.ui.ShowUpdateDialog(info, func() {
			if r.ctx.Err() != nil {
				return
			}
			u.requestInstallPermission(r)
		}, func() {
			u.setState(r, StateCancelled)
			u.recordInBackground(r, StateCancelled)
		})
	})
}

func (u *Updater) failCheck(r *run, err error) {
	log.Error("update check failed", logging.KeyRunID, r.id, logging.KeyURL, u.request.URL, logging.KeyError, err)
	u.setState(r, StateFailed)
	u.record(r, StateFailed, err, "")
	u.onMain(r, func() {
		if r.opts.Manual {
			u.ui.DismissCheckLoading()
		}
		if r.opts.OnError != nil {
			r.opts.OnError(err)
			return
		}
		if r.opts.Manual {
			u.ui.ShowError(err, u.printer.Sprintf(i18n.KeyCheckError)+": "+err.Error())
		}
	})
}

// onMain runs fn on the foreground dispatcher unless the run's scope is done.
func (u *Updater) onMain(r *run, fn func()) {
	if r.ctx.Err() != nil {
		log.Debug("scope closed, dropping UI update", logging.KeyRunID, r.id)
		return
	}
	u.dispatcher.Dispatch(func() {
		if r.ctx.Err() != nil {
			return
		}
		fn()
	})
}

func (u *Updater) setState(r *run, s State) {
	prev := State(u.state.Swap(int32(s)))
	log.Debug("state change", logging.KeyRunID, r.id, "from", prev, logging.KeyState, s)
}

// recordInBackground is record for callbacks running on the foreground
// dispatcher, which must not wait on the recorder's I/O.
func (u *Updater) recordInBackground(r *run, outcome State) {
	u.wg.Go(func() {
		u.record(r, outcome, nil, "")
	})
}

// record stores the outcome of r. Failures are logged and otherwise ignored.
func (u *Updater) record(r *run, outcome State, runErr error, digest string) {
	if u.recorder == nil {
		return
	}
	rec := shared.CheckRecord{
		RunID:          r.id,
		CheckURL:       u.request.URL,
		VersionName:    r.info.VersionName,
		Manual:         r.opts.Manual,
		Outcome:        outcome.String(),
		ArtifactSHA256: digest,
		CreatedAt:      time.Now(),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.ctx), recordTimeout)
	defer cancel()
	if err := u.recorder.Record(ctx, rec); err != nil {
		log.Warn("failed to record check run", logging.KeyRunID, r.id, logging.KeyError, err)
	}
}
