package screen

import (
	"github.com/rubenparnell/departureBoard/internal/srv/upstream"
	"strconv"
)

const (
	// longDestination is the length from which a destination uses the small font
	longDestination = 15
	separatorY      = 24
)

// StationBoard is what is shown for one station platform
type StationBoard struct {
	StationName string
	Platform    string
	Departures  []upstream.Departure
}

// DueLabel is the text of a due time, 0 and -1 both mean the train is
// arriving now.
func DueLabel(dueIn int) string {
	if dueIn == 0 || dueIn == -1 {
		return "Due"
	}
	return strconv.Itoa(dueIn)
}

// Metro renders two station platforms separated by a rule
func (p Panel) Metro(first StationBoard, second StationBoard) Result {
	canvas := p.NewCanvas()

	p.drawStation(canvas, 1, first)
	canvas.HLine(0, p.Width, separatorY, PrimaryColour)
	p.drawStation(canvas, separatorY+2, second)

	return Result{Frame: canvas, Wait: MetroWait, Brightness: FullBrightness}
}

func (p Panel) drawStation(canvas *Canvas, y int, board StationBoard) {
	canvas.AddLabel(1, y, board.StationName+": "+board.Platform, SMALL_FONT, SecondaryColour)
	y += SmallLineHeight

	for i, departure := range board.Departures {
		long := len(departure.Destination) > longDestination
		destinationFont := REGULAR_FONT
		if long {
			destinationFont = SMALL_FONT
			if i == 0 {
				y++
			}
		}
		canvas.AddLabel(1, y, departure.Destination, destinationFont, PrimaryColour)

		due := DueLabel(departure.DueIn)
		dueY := y
		if long {
			dueY--
		}
		canvas.AddLabel(p.Width-TextWidth(due, REGULAR_FONT), dueY, due, REGULAR_FONT, PrimaryColour)

		y += RegularLineHeight
	}

	if len(board.Departures) == 0 {
		y += 2
		canvas.AddCenteredLabel(y, "There are no services", SMALL_FONT, PrimaryColour)
		y += SmallLineHeight + 1
		canvas.AddCenteredLabel(y, "from this platform", SMALL_FONT, PrimaryColour)
	}
}
