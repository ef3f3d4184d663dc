package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"easyupdate-go/internal/i18n"
	"easyupdate-go/internal/logging"
	"easyupdate-go/internal/shared"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
	"golang.org/x/text/message"
)

var log = logging.L("ui")

var (
	cAccent = lipgloss.Color("39")
	cGray   = lipgloss.Color("240")
	cRed    = lipgloss.Color("196")
	cGreen  = lipgloss.Color("118")

	styleDialog = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cAccent).
			Padding(0, 1)
	styleTitle   = lipgloss.NewStyle().Foreground(cAccent).Bold(true)
	styleOption  = lipgloss.NewStyle().Foreground(cGray)
	styleError   = lipgloss.NewStyle().Foreground(cRed).Bold(true)
	styleToast   = lipgloss.NewStyle().Foreground(cGreen)
	styleLoading = lipgloss.NewStyle().Foreground(cGray).Italic(true)
)

// Terminal is the default Strategy. Dialogs block on a line of input.
type Terminal struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	printer *message.Printer
	bar     progress.Model
	showing bool // progress line is on screen
}

// NewTerminal reads answers from in and renders to out. Nil values fall back
// to stdin/stdout and an English printer.
func NewTerminal(in io.Reader, out io.Writer, printer *message.Printer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if printer == nil {
		printer = i18n.NewPrinter("en")
	}
	return &Terminal{
		in:      bufio.NewReader(in),
		out:     out,
		printer: printer,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (t *Terminal) ShowCheckLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, styleLoading.Render(t.printer.Sprintf(i18n.KeyChecking)))
}

func (t *Terminal) DismissCheckLoading() {}

func (t *Terminal) ShowUpdateDialog(info shared.UpdateInfo, onUpdate, onCancel func()) {
	t.mu.Lock()
	var b strings.Builder
	b.WriteString(styleTitle.Render(t.printer.Sprintf(i18n.KeyNewVersion, info.VersionName)))
	if size, err := cast.ToInt64E(info.Extra); err == nil && size > 0 {
		b.WriteString(styleOption.Render(" (" + humanize.Bytes(uint64(size)) + ")"))
	}
	b.WriteString("\n\n")
	b.WriteString(info.Content)
	b.WriteString("\n\n")
	b.WriteString(styleOption.Render("[1] " + t.printer.Sprintf(i18n.KeyUpdateNow)))
	if !info.IsForce {
		b.WriteString("  ")
		b.WriteString(styleOption.Render("[2] " + t.printer.Sprintf(i18n.KeyLater)))
	}
	fmt.Fprintln(t.out, styleDialog.Render(b.String()))

	allowed := []string{"1", "2"}
	if info.IsForce {
		allowed = allowed[:1]
	}
	choice, ok := t.prompt(allowed...)
	t.mu.Unlock()

	switch {
	case choice == "1":
		onUpdate()
	case !info.IsForce:
		onCancel()
	case !ok:
		log.Warn("input closed while a forced update dialog was open")
	}
}

func (t *Terminal) ShowPermissionDialog(onGoToSetting, onCancel func()) {
	t.mu.Lock()
	var b strings.Builder
	b.WriteString(styleTitle.Render(t.printer.Sprintf(i18n.KeyPermTitle)))
	b.WriteString("\n\n")
	b.WriteString(t.printer.Sprintf(i18n.KeyPermMsg))
	b.WriteString("\n\n")
	b.WriteString(styleOption.Render("[1] " + t.printer.Sprintf(i18n.KeyGoSettings)))
	b.WriteString("  ")
	b.WriteString(styleOption.Render("[2] " + t.printer.Sprintf(i18n.KeyCancel)))
	fmt.Fprintln(t.out, styleDialog.Render(b.String()))

	choice, _ := t.prompt("1", "2")
	t.mu.Unlock()

	if choice == "1" {
		onGoToSetting()
		return
	}
	onCancel()
}

func (t *Terminal) ShowDownloadProgress(percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	percent = max(0, min(100, percent))
	t.showing = true
	fmt.Fprintf(t.out, "\r%s %s %3d%%", t.printer.Sprintf(i18n.KeyDownloading), t.bar.ViewAs(float64(percent)/100), percent)
}

func (t *Terminal) DismissDownloadProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.showing {
		fmt.Fprintln(t.out)
		t.showing = false
	}
}

func (t *Terminal) ShowError(err error, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if msg == "" && err != nil {
		msg = err.Error()
	}
	fmt.Fprintln(t.out, styleError.Render("✗ "+msg))
}

func (t *Terminal) ShowToast(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, styleToast.Render(msg))
}

// prompt reads lines until one of choices is entered. ok is false when
// input ended first.
func (t *Terminal) prompt(choices ...string) (choice string, ok bool) {
	for {
		fmt.Fprint(t.out, "> ")
		line, err := t.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		for _, c := range choices {
			if answer == c {
				return c, true
			}
		}
		if err != nil {
			return "", false
		}
	}
}
