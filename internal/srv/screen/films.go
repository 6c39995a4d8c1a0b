package screen

import (
	"fmt"
	"github.com/rubenparnell/departureBoard/internal/srv/upstream"
	"image/color"
	"strings"
)

// Films renders a page of today's films, each as a title line and a
// showtimes line. Lines wider than the panel scroll as a marquee.
func (p Panel) Films(films []upstream.Film, state ScrollState) Result {
	canvas := p.NewCanvas()
	if len(films) == 0 {
		canvas.AddCenteredLabel(max(p.Height-SmallLineHeight, 0)/2, "No films found", SMALL_FONT, PrimaryColour)
		return Result{Frame: canvas, Wait: FilmsWait, Brightness: FullBrightness}
	}

	perPage := max(p.Height/SmallLineHeight/2, 1)
	pages := PageCount(len(films), perPage)
	page := state.Page % pages
	start := page * perPage
	end := min(start+perPage, len(films))

	y := 0
	for _, film := range films[start:end] {
		p.marqueeLabel(canvas, y, film.Title, state.Offset, PrimaryColour)
		y += SmallLineHeight
		p.marqueeLabel(canvas, y, strings.Join(film.Times, ", "), state.Offset, SecondaryColour)
		y += SmallLineHeight
	}

	canvas.AddLabel(p.Width-4*3, p.Height-5, fmt.Sprintf("%d/%d", page+1, pages), SMALL_FONT, RainColour)

	return Result{Frame: canvas, Wait: FilmsWait, Brightness: FullBrightness}
}

func (p Panel) marqueeLabel(canvas *Canvas, y int, text string, offset int, col color.RGBA) {
	shift := MarqueeShift(offset, TextWidth(text, SMALL_FONT), p.Width)
	canvas.AddLabel(-shift, y, text, SMALL_FONT, col)
}
