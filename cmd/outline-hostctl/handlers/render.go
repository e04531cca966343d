package handlers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/pricing"
	"github.com/zuohuadong/outline-server/internal/server"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	refStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	errStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

const progressBarWidth = 20

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// progressPrinter writes one line per progress change of each watched server.
type progressPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool
	last   map[string]float64
}

func newProgressPrinter(out io.Writer, styled bool) *progressPrinter {
	return &progressPrinter{out: out, styled: styled, last: make(map[string]float64)}
}

func (p *progressPrinter) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// listener returns the progress listener for one server.
func (p *progressPrinter) listener(ref string) install.ProgressListener {
	return func(progress float64) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if last, ok := p.last[ref]; ok && last == progress {
			return
		}
		p.last[ref] = progress
		fmt.Fprintf(p.out, "%s %s %3.0f%%\n",
			p.style(refStyle, ref), p.bar(progress), progress*100)
	}
}

func (p *progressPrinter) bar(progress float64) string {
	filled := int(progress * progressBarWidth)
	filled = max(0, min(filled, progressBarWidth))
	return "[" + p.style(okStyle, strings.Repeat("#", filled)) +
		p.style(dimStyle, strings.Repeat("-", progressBarWidth-filled)) + "]"
}

func (p *progressPrinter) installed(ref string, res install.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", p.style(refStyle, ref), p.style(okStyle, "installed"))
	fmt.Fprintf(p.out, "  endpoint:    %s\n", res.Endpoint)
	fmt.Fprintf(p.out, "  fingerprint: %s\n", res.Fingerprint)
}

func (p *progressPrinter) failed(ref string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s: %v\n", p.style(refStyle, ref), p.style(errStyle, "failed"), err)
}

// renderHost formats host metadata.
func renderHost(ref string, host *server.HostInfo, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}
	address := host.Address
	if address == "" {
		address = "none"
	}

	var b strings.Builder
	b.WriteString(style(titleStyle, "Server "+ref))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", style(dimStyle, "region:  "), host.Region)
	fmt.Fprintf(&b, "  %s %s\n", style(dimStyle, "address: "), address)
	fmt.Fprintf(&b, "  %s %s\n", style(dimStyle, "cost:    "), host.MonthlyCost)
	fmt.Fprintf(&b, "  %s %s/mo\n", style(dimStyle, "transfer:"), pricing.FormatBytes(host.MonthlyTransferBytes))
	return b.String()
}
