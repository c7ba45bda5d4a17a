package shell

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Printer is the shell's output sink. Each call writes whole lines under a
// mutex so command output and notification records never interleave mid-line.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	info         *color.Color
	success      *color.Color
	failure      *color.Color
	notification *color.Color
	service      *color.Color
	address      *color.Color
}

// NewPrinter creates a Printer writing to out. With colors disabled no escape
// sequences are emitted, regardless of the terminal.
func NewPrinter(out io.Writer, colors bool) *Printer {
	p := &Printer{
		out:          out,
		info:         color.New(color.FgCyan),
		success:      color.New(color.FgGreen),
		failure:      color.New(color.FgRed),
		notification: color.New(color.FgYellow),
		service:      color.New(color.FgMagenta),
		address:      color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.info, p.success, p.failure, p.notification, p.service, p.address} {
		if colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) Info(format string, args ...any) {
	p.line(p.info.Sprintf(format, args...))
}

func (p *Printer) Success(format string, args ...any) {
	p.line(p.success.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	p.line(p.failure.Sprintf(format, args...))
}

func (p *Printer) Notification(format string, args ...any) {
	p.line(p.notification.Sprintf(format, args...))
}

// Device prints one discovery result, address highlighted.
func (p *Printer) Device(address, name string) {
	p.line(fmt.Sprintf("%s  %s", p.address.Sprint(address), name))
}

// Service prints a service header line.
func (p *Printer) Service(uuid, name string) {
	text := "[Service] " + uuid
	if name != "" {
		text += " " + name
	}
	p.line(p.service.Sprint(text))
}

// Characteristic prints a characteristic line nested under its service.
func (p *Printer) Characteristic(uuid, name, props string) {
	text := fmt.Sprintf("  └─ %s %s", p.service.Sprint("[Char]"), uuid)
	if name != "" {
		text += " " + name
	}
	p.line(fmt.Sprintf("%s (%s)", text, props))
}

// Plain prints text without color. Multi-line text is written in one call.
func (p *Printer) Plain(text string) {
	p.line(text)
}

func (p *Printer) line(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, text+"\n")
}
