package upstream

import (
	"bytes"
	"context"
	"fmt"
	"github.com/disintegration/imaging"
	"github.com/rubenparnell/departureBoard/internal/images"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"
)

// IconSize is the side of a weather icon on the panel
const IconSize = 24

// Icons downloads weather icons once per url and keeps them resized in memory
type Icons struct {
	client *Client

	lock   sync.Mutex
	loaded map[string]image.Image
}

func NewIcons(client *Client) *Icons {
	return &Icons{
		client: client,
		loaded: map[string]image.Image{},
	}
}

// Icon returns the icon of a weather code, nil when there is none
func (i *Icons) Icon(ctx context.Context, code int, isDaytime bool) (image.Image, error) {
	url := images.WeatherIconUrl(code, isDaytime)
	if url == "" {
		return nil, nil
	}

	i.lock.Lock()
	icon, ok := i.loaded[url]
	i.lock.Unlock()
	if ok {
		return icon, nil
	}

	content, err := i.client.getBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("icon %d: %w", code, err)
	}
	icon, err = DecodeIcon(content)
	if err != nil {
		return nil, fmt.Errorf("icon %d: %w", code, err)
	}

	i.lock.Lock()
	i.loaded[url] = icon
	i.lock.Unlock()
	return icon, nil
}

// DecodeIcon decodes an image and resizes it to IconSize x IconSize
func DecodeIcon(content []byte) (image.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return imaging.Resize(src, IconSize, IconSize, imaging.Lanczos), nil
}
