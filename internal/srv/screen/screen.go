// Package screen renders the frames of every board mode. Renderers are pure:
// they only read what they are given and return a new frame together with
// how long the scheduler should wait before the next one.
package screen

import (
	"image"
	"image/color"
	"image/draw"
	"time"
)

const (
	FullBrightness = 100
	LinkBrightness = 75
)

const (
	MetroWait    = 30 * time.Second
	WeatherWait  = 30 * time.Second
	FilmsWait    = 80 * time.Millisecond
	MessagesWait = 15 * time.Second
)

var (
	PrimaryColour   = color.RGBA{246, 115, 25, 255}
	SecondaryColour = color.RGBA{6, 234, 49, 255}
	RainColour      = color.RGBA{33, 227, 253, 255}
	TempColour      = color.RGBA{252, 238, 70, 255}
	UvColour        = color.RGBA{253, 72, 34, 255}
	MaxColour       = color.RGBA{255, 0, 0, 255}
	MinColour       = color.RGBA{0, 0, 255, 255}
	GridColour      = color.RGBA{50, 50, 50, 255}
	WhiteColour     = color.RGBA{255, 255, 255, 255}
	BlackColour     = color.RGBA{0, 0, 0, 255}
)

// Result is one rendered frame and what the scheduler does after showing it
type Result struct {
	Frame *Canvas

	// Wait before rendering again, ignored when Block is set
	Wait time.Duration

	// Block until an event arrives instead of waiting for a tick
	Block bool

	Brightness int
}

// Panel is the size of the display frames are rendered for
type Panel struct {
	Width  int
	Height int
}

func (p Panel) NewCanvas() *Canvas {
	return NewCanvas(p.Width, p.Height)
}

// Label is a text drawn on a canvas, kept so frames can be inspected
type Label struct {
	Text   string
	X      int
	Y      int
	Font   Font
	Colour color.RGBA
}

// Canvas is an RGBA frame that remembers the labels drawn on it
type Canvas struct {
	*image.RGBA
	Labels []Label
}

func NewCanvas(width, height int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{BlackColour}, image.Point{}, draw.Src)
	return &Canvas{RGBA: img}
}

// Texts returns the labels text in drawing order
func (c *Canvas) Texts() []string {
	texts := make([]string, 0, len(c.Labels))
	for _, label := range c.Labels {
		texts = append(texts, label.Text)
	}
	return texts
}

// Find returns the first label with the given text
func (c *Canvas) Find(text string) (Label, bool) {
	for _, label := range c.Labels {
		if label.Text == text {
			return label, true
		}
	}
	return Label{}, false
}

// Paste draws src with its alpha at position
func (c *Canvas) Paste(src image.Image, position image.Point) {
	draw.Draw(c.RGBA, src.Bounds().Sub(src.Bounds().Min).Add(position), src, src.Bounds().Min, draw.Over)
}

func (c *Canvas) Fill(rect image.Rectangle, col color.Color) {
	draw.Draw(c.RGBA, rect, &image.Uniform{col}, image.Point{}, draw.Src)
}
