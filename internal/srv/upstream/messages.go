package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/colornames"
	"image/color"
	"net/url"
	"strconv"
	"strings"
)

// Colour is a message colour, sent as "#rrggbb", "#rgb", a colour name or
// [r, g, b]. A colour that can't be read decodes to the zero Colour, which is
// drawn with the default text colour.
type Colour color.RGBA

func (c *Colour) UnmarshalJSON(data []byte) error {
	*c = Colour{}
	if string(data) == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParseColour(text)
		if err != nil {
			logrus.Warnf("Use default message colour: %v", err)
			return nil
		}
		*c = parsed
		return nil
	}

	var components []int
	if err := json.Unmarshal(data, &components); err != nil || len(components) < 3 {
		logrus.Warnf("Use default message colour: invalid colour %s", string(data))
		return nil
	}
	*c = Colour{R: clampByte(components[0]), G: clampByte(components[1]), B: clampByte(components[2]), A: 0xff}
	return nil
}

func (c Colour) RGBA() color.RGBA {
	return color.RGBA(c)
}

// ParseColour reads a hex colour or an SVG colour name
func ParseColour(text string) (Colour, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if named, ok := colornames.Map[text]; ok {
		return Colour(named), nil
	}
	return ParseHexColour(text)
}

func ParseHexColour(text string) (Colour, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(text), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Colour{}, fmt.Errorf("invalid colour %q", text)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Colour{}, fmt.Errorf("invalid colour %q", text)
	}
	return Colour{R: uint8(value >> 16), G: uint8(value >> 8), B: uint8(value), A: 0xff}, nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

type Message struct {
	Text   string `json:"text"`
	Colour Colour `json:"colour"`
}

type messagesResponse struct {
	Messages []Message `json:"messages"`
}

// MessageFeed returns the messages sent to one board
type MessageFeed struct {
	client  *Client
	url     string
	boardId string
}

func NewMessageFeed(client *Client, baseUrl string, boardId string) *MessageFeed {
	return &MessageFeed{
		client:  client,
		url:     strings.TrimRight(baseUrl, "/") + "/" + url.PathEscape(boardId),
		boardId: boardId,
	}
}

func (f *MessageFeed) Messages(ctx context.Context) ([]Message, error) {
	var response messagesResponse
	if err := f.client.getJSON(ctx, f.url, &response); err != nil {
		return nil, fmt.Errorf("messages of board %s: %w", f.boardId, err)
	}
	return response.Messages, nil
}
