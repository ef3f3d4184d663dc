package controller

import (
	"context"
	"maps"
	"os"
	"path/filepath"

	"easyupdate-go/internal/apiclient"
	"easyupdate-go/internal/artifact"
	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/i18n"
	"easyupdate-go/internal/platform"
	"easyupdate-go/internal/shared"
	"easyupdate-go/internal/ui"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/message"
)

// Parser converts the raw check response into UpdateInfo.
type Parser interface {
	Parse(body string) (shared.UpdateInfo, error)
}

// ParserFunc adapts a plain function to Parser.
type ParserFunc func(body string) (shared.UpdateInfo, error)

func (f ParserFunc) Parse(body string) (shared.UpdateInfo, error) { return f(body) }

// Platform is the install side of the host device.
type Platform interface {
	NeedsInstallPermission() bool
	OpenInstallSettings() error
	Install(path string) error
}

// Recorder stores finished runs.
type Recorder interface {
	Record(ctx context.Context, rec shared.CheckRecord) error
}

// Recorders fans one record out to every non-nil recorder.
type Recorders []Recorder

func (rs Recorders) Record(ctx context.Context, rec shared.CheckRecord) error {
	var err error
	for _, r := range rs {
		if r != nil {
			err = multierr.Append(err, r.Record(ctx, rec))
		}
	}
	return err
}

// Builder collects the configuration of an Updater.
type Builder struct {
	url        string
	method     string
	headers    map[string]string
	body       apiclient.Body
	parser     Parser
	strategy   ui.Strategy
	httpClient apiclient.HTTPClient
	platform   Platform
	cache      *artifact.Cache
	dispatcher Dispatcher
	recorder   Recorder
	printer    *message.Printer
}

func NewBuilder() *Builder {
	return &Builder{method: "GET"}
}

func (b *Builder) SetURL(url string) *Builder {
	b.url = url
	return b
}

func (b *Builder) SetParser(p Parser) *Builder {
	b.parser = p
	return b
}

func (b *Builder) SetHeaders(headers map[string]string) *Builder {
	b.headers = headers
	return b
}

func (b *Builder) SetUIStrategy(s ui.Strategy) *Builder {
	b.strategy = s
	return b
}

func (b *Builder) SetMethod(method string) *Builder {
	b.method = apiclient.NormalizeMethod(method)
	return b
}

// SetJSONBody replaces any form body and switches the method to POST.
func (b *Builder) SetJSONBody(doc string) *Builder {
	b.body = apiclient.JSONBody(doc)
	b.method = "POST"
	return b
}

// SetFormBody replaces any JSON body and switches the method to POST.
func (b *Builder) SetFormBody(fields map[string]string) *Builder {
	b.body = apiclient.FormBody(fields)
	b.method = "POST"
	return b
}

func (b *Builder) SetHTTPClient(c apiclient.HTTPClient) *Builder {
	b.httpClient = c
	return b
}

func (b *Builder) SetPlatform(p Platform) *Builder {
	b.platform = p
	return b
}

func (b *Builder) SetCache(c *artifact.Cache) *Builder {
	b.cache = c
	return b
}

// SetDispatcher sets where UI calls and callbacks run. The default Inline
// dispatcher only serializes them on the posting goroutine; hosts that need a
// single foreground thread pass a MainLoop and call Run on that thread.
func (b *Builder) SetDispatcher(d Dispatcher) *Builder {
	b.dispatcher = d
	return b
}

func (b *Builder) SetRecorder(r Recorder) *Builder {
	b.recorder = r
	return b
}

func (b *Builder) SetPrinter(p *message.Printer) *Builder {
	b.printer = p
	return b
}

// Build returns a ConfigError when the URL or the parser is missing.
func (b *Builder) Build() (*Updater, error) {
	if b.url == "" {
		return nil, cstmerr.NewConfigError("check URL is required", nil)
	}
	if b.parser == nil {
		return nil, cstmerr.NewConfigError("response parser is required", nil)
	}

	printer := b.printer
	if printer == nil {
		printer = i18n.NewPrinter("en")
	}
	strategy := b.strategy
	if strategy == nil {
		strategy = ui.NewTerminal(nil, nil, printer)
	}
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = apiclient.NewRestyAdapter()
	}
	plat := b.platform
	if plat == nil {
		plat = &platform.Device{Launcher: platform.ShellLauncher{}}
	}
	cache := b.cache
	if cache == nil {
		cache = artifact.NewCache(afero.NewOsFs(), filepath.Join(os.TempDir(), "easyupdate"), nil)
	}
	dispatcher := b.dispatcher
	if dispatcher == nil {
		dispatcher = &Inline{}
	}

	u := &Updater{
		request: apiclient.RequestConfig{
			URL:     b.url,
			Method:  apiclient.NormalizeMethod(b.method),
			Headers: maps.Clone(b.headers),
			Body:    b.body,
		},
		api:         apiclient.New(httpClient),
		parser:      b.parser,
		ui:          strategy,
		platform:    plat,
		cache:       cache,
		dispatcher:  dispatcher,
		recorder:    b.recorder,
		printer:     printer,
		checkSem:    semaphore.NewWeighted(1),
		downloadSem: semaphore.NewWeighted(1),
	}
	u.state.Store(int32(StateIdle))
	return u, nil
}
