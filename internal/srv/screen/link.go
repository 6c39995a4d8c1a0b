package screen

import (
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"image"
	"strings"
)

// linkChunk is the number of url characters per line next to the QR code
const linkChunk = 15

// QRBitmap encodes content without border, true is a dark module
func QRBitmap(content string) ([][]bool, error) {
	code, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true
	return code.Bitmap(), nil
}

func (c *Canvas) drawQR(bitmap [][]bool, origin image.Point, scale int) {
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			// light modules on a dark panel
			c.Fill(image.Rect(origin.X+x*scale, origin.Y+y*scale, origin.X+(x+1)*scale, origin.Y+(y+1)*scale), WhiteColour)
		}
	}
}

// Link renders the board settings link as a QR code and as text. The frame
// is static: the scheduler waits for an event and dims the panel.
func (p Panel) Link(url string) Result {
	canvas := p.NewCanvas()
	result := Result{Frame: canvas, Block: true, Brightness: LinkBrightness}

	bitmap, err := QRBitmap(url)
	if err != nil {
		logrus.Warnf("Unable to encode link %s: %v", url, err)
	} else {
		canvas.drawQR(bitmap, image.Pt(0, 7), 1)
	}

	canvas.AddLabel(0, 0, "To change board settings:", SMALL_FONT, SecondaryColour)
	canvas.AddLabel(34, 6, "Scan QR or visit:", SMALL_FONT, SecondaryColour)

	shown := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	y := 12
	for start := 0; start < len(shown); start += linkChunk {
		canvas.AddLabel(34, y, shown[start:min(start+linkChunk, len(shown))], SMALL_FONT, PrimaryColour)
		y += SmallLineHeight
	}

	return result
}

// SetupQR renders the local setup page url as a QR code as large as the
// panel allows, shown while the board has no network.
func (p Panel) SetupQR(url string) Result {
	canvas := p.NewCanvas()
	result := Result{Frame: canvas, Block: true, Brightness: FullBrightness}

	bitmap, err := QRBitmap(url)
	if err != nil || len(bitmap) == 0 {
		logrus.Warnf("Unable to encode setup url %s: %v", url, err)
		canvas.AddCenteredLabel(0, url, SMALL_FONT, PrimaryColour)
		return result
	}

	modules := len(bitmap)
	scale := max(min(p.Width, p.Height)/modules, 1)
	origin := image.Pt((p.Width-modules*scale)/2, (p.Height-modules*scale)/2)
	canvas.drawQR(bitmap, origin, scale)

	return result
}
