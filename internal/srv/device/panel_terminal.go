package device

import (
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"
)

// terminalPanel prints frames with half block characters: every character
// cell shows two stacked pixels.
type terminalPanel struct {
	lock       sync.Mutex
	out        io.Writer
	brightness int
}

func newTerminalPanel(out io.Writer) *terminalPanel {
	return &terminalPanel{out: out, brightness: 100}
}

func (p *terminalPanel) Draw(img image.Image) error {
	p.lock.Lock()
	brightness := p.brightness
	p.lock.Unlock()

	// cursor home, then the frame
	_, err := fmt.Fprint(p.out, "\x1b[H"+RenderTerminal(img, brightness))
	return err
}

func (p *terminalPanel) SetBrightness(brightness int) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.brightness = brightness
	return nil
}

func (p *terminalPanel) Close() error {
	_, err := fmt.Fprintln(p.out)
	return err
}

// RenderTerminal renders img as rows of "▀", top pixel as foreground and
// bottom pixel as background, colours dimmed to brightness percent.
func RenderTerminal(img image.Image, brightness int) string {
	bounds := img.Bounds()
	var sb strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := dim(img.At(x, y), brightness)
			bottom := lipgloss.Color("#000000")
			if y+1 < bounds.Max.Y {
				bottom = dim(img.At(x, y+1), brightness)
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func dim(c color.Color, brightness int) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	scale := func(v uint32) uint32 {
		return (v >> 8) * uint32(brightness) / 100
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", scale(r), scale(g), scale(b)))
}
