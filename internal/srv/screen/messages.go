package screen

import (
	"fmt"
	"github.com/mitchellh/go-wordwrap"
	"github.com/rubenparnell/departureBoard/internal/srv/upstream"
	"image/color"
	"strings"
)

const (
	MessageLinesPerPage = 8

	// messageLineLength is the number of characters of a line, the last line
	// of a page is shorter to leave room for the page indicator.
	messageLineLength     = 24
	messageLastLineLength = 21
)

type MessageLine struct {
	Text   string
	Colour color.RGBA
}

// WrapMessages splits messages into display lines on word boundaries. Words
// longer than a line are cut.
func WrapMessages(messages []upstream.Message) []MessageLine {
	var lines []MessageLine
	for _, message := range messages {
		col := message.Colour.RGBA()
		if col.A == 0 {
			col = PrimaryColour
		}

		remaining := strings.TrimSpace(message.Text)
		for remaining != "" {
			limit := messageLineLength
			if (len(lines)+1)%MessageLinesPerPage == 0 {
				limit = messageLastLineLength
			}

			line, rest, _ := strings.Cut(wordwrap.WrapString(remaining, uint(limit)), "\n")
			if runes := []rune(line); len(runes) > limit {
				line = string(runes[:limit])
				rest = string(runes[limit:]) + "\n" + rest
			}
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, MessageLine{Text: line, Colour: col})
			}
			remaining = strings.TrimSpace(rest)
		}
	}
	return lines
}

// Messages renders one page of the messages. The page is clamped to the last
// one; hasMore tells whether a page follows.
func (p Panel) Messages(messages []upstream.Message, page int) (result Result, hasMore bool) {
	canvas := p.NewCanvas()
	result = Result{Frame: canvas, Wait: MessagesWait, Brightness: FullBrightness}

	lines := WrapMessages(messages)
	if len(lines) == 0 {
		canvas.AddCenteredLabel((p.Height-SmallLineHeight)/2, "No messages", SMALL_FONT, PrimaryColour)
		return result, false
	}

	pages := PageCount(len(lines), MessageLinesPerPage)
	page = max(min(page, pages-1), 0)
	start := page * MessageLinesPerPage
	end := min(start+MessageLinesPerPage, len(lines))

	y := 0
	for _, line := range lines[start:end] {
		canvas.AddLabel(0, y, line.Text, SMALL_FONT, line.Colour)
		y += SmallLineHeight
	}

	canvas.AddRightLabel(p.Height-SmallLineHeight, fmt.Sprintf("%d/%d", page+1, pages), SMALL_FONT, RainColour)

	return result, page+1 < pages
}
