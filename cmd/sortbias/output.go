package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexshd/sortbias"
)

var (
	colorValid   = lipgloss.Color("#2CD7C7")
	colorInvalid = lipgloss.Color("#E74C3C")
	colorReview  = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#2C4A54")
)

// printer writes command output, styled when the destination is a terminal.
type printer struct {
	w      io.Writer
	styled bool

	title   lipgloss.Style
	valid   lipgloss.Style
	invalid lipgloss.Style
	review  lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
}

func newPrinter(w io.Writer, styled bool) *printer {
	return &printer{
		w:       w,
		styled:  styled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorValid),
		valid:   lipgloss.NewStyle().Foreground(colorValid).Bold(true),
		invalid: lipgloss.NewStyle().Foreground(colorInvalid).Bold(true),
		review:  lipgloss.NewStyle().Foreground(colorReview).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
	}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) heading(text string) {
	p.printf("%s\n", p.render(p.title, text))
}

func (p *printer) mark(ok bool) string {
	if ok {
		return p.render(p.valid, "✓")
	}
	return p.render(p.invalid, "✗")
}

func (p *printer) check(c sortbias.Check) {
	p.heading(fmt.Sprintf("log2(K) = %g at P_crit = %g, log2(N) = %g", c.Log2K, c.PCrit, c.Log2N))
	for _, e := range c.Entries {
		p.printf("  %s m=%-2d max log2(K) %8.4f  margin %+8.4f\n",
			p.mark(e.Valid), e.BitWidth, e.MaxLog2K, e.Margin)
	}
}

func (p *printer) strategy(s sortbias.Strategy) string {
	switch s {
	case sortbias.StrategySortKeys:
		return p.render(p.valid, string(s))
	case sortbias.StrategyPermutation:
		return p.render(p.invalid, string(s))
	default:
		return p.render(p.review, string(s))
	}
}

func (p *printer) decision(d sortbias.Decision) {
	p.printf("%s %s\n", p.render(p.muted, "strategy:"), p.strategy(d.Strategy))
	body := d.Reason + "\n\n" + d.Mitigation
	if p.styled {
		body = p.box.Render(body)
	}
	p.printf("%s\n", body)
}
