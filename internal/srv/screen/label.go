package screen

import (
	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
	"image"
	"image/color"
)

type Font int

const (
	SMALL_FONT Font = iota
	REGULAR_FONT
	SPLASH_FONT
)

const (
	SmallLineHeight   = 6
	RegularLineHeight = 8
)

// Faces are shared by every renderer, renderers only run on the scheduler
// goroutine.
var (
	smallFace   font.Face
	regularFace font.Face
)

func init() {
	mono, err := truetype.Parse(gomono.TTF)
	if err != nil {
		logrus.Panicf("Unable to parse mono font: %v", err)
	}
	smallFace = truetype.NewFace(mono, &truetype.Options{Size: SmallLineHeight, DPI: 72, Hinting: font.HintingFull})
	regularFace = truetype.NewFace(mono, &truetype.Options{Size: RegularLineHeight, DPI: 72, Hinting: font.HintingFull})
}

func (f Font) Face() font.Face {
	switch f {
	case REGULAR_FONT:
		return regularFace
	case SPLASH_FONT:
		return bitmapfont.Face
	default:
		return smallFace
	}
}

// TextWidth is the advance of text in pixels
func TextWidth(text string, f Font) int {
	return font.MeasureString(f.Face(), text).Ceil()
}

// AddLabel draws text with its top left corner at (x, y)
func (c *Canvas) AddLabel(x, y int, text string, f Font, col color.RGBA) {
	face := f.Face()
	d := &font.Drawer{
		Dst:  c.RGBA,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	c.Labels = append(c.Labels, Label{Text: text, X: x, Y: y, Font: f, Colour: col})
}

func (c *Canvas) AddCenteredLabel(y int, text string, f Font, col color.RGBA) {
	c.AddLabel((c.Bounds().Dx()-TextWidth(text, f))/2, y, text, f, col)
}

// AddRightLabel draws text against the right edge
func (c *Canvas) AddRightLabel(y int, text string, f Font, col color.RGBA) {
	c.AddLabel(c.Bounds().Dx()-TextWidth(text, f), y, text, f, col)
}
