package upstream

import (
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"io"
	"strconv"
	"strings"
)

type Film struct {
	Title string
	Times []string
}

// Cinema scrapes the "now playing" page of the local cinema
type Cinema struct {
	client *Client
	url    string
}

func NewCinema(client *Client, url string) *Cinema {
	return &Cinema{
		client: client,
		url:    url,
	}
}

// Films returns today's films in page order
func (c *Cinema) Films(ctx context.Context) ([]Film, error) {
	resp, err := c.client.get(ctx, c.url, browserUserAgent)
	if err != nil {
		return nil, fmt.Errorf("films: %w", err)
	}
	defer resp.Body.Close()

	films, err := ParseFilms(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("films: %w", err)
	}
	return films, nil
}

// ParseFilms reads the anchors of the app container: a /movie/ anchor
// followed by /checkout/ anchors is a film and its showtimes.
func ParseFilms(r io.Reader) ([]Film, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	app := doc.Find("div#q-app")
	if app.Length() == 0 {
		return nil, fmt.Errorf("no app container in page")
	}

	type anchor struct {
		href string
		text string
	}
	var anchors []anchor
	app.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		anchors = append(anchors, anchor{href: href, text: strings.TrimSpace(s.Text())})
	})

	var films []Film
	for i := 0; i < len(anchors)-1; {
		if !strings.Contains(anchors[i].href, "/movie/") || !strings.Contains(anchors[i+1].href, "/checkout/") {
			i++
			continue
		}
		film := Film{Title: anchors[i].text}
		i++
		for ; i < len(anchors) && strings.Contains(anchors[i].href, "/checkout/"); i++ {
			film.Times = append(film.Times, Showtime(anchors[i].text))
		}
		films = append(films, film)
	}
	return films, nil
}

// Showtime converts "7:30PM" to "19:30". Text that is not a 12 hour clock
// time is returned unchanged.
func Showtime(text string) string {
	text = strings.TrimSpace(text)
	upper := strings.ToUpper(text)

	var pm bool
	switch {
	case strings.HasSuffix(upper, "PM"):
		pm = true
	case strings.HasSuffix(upper, "AM"):
	default:
		return text
	}

	clock := strings.TrimSpace(text[:len(text)-2])
	hourText, minute, found := strings.Cut(clock, ":")
	if !found {
		return text
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 1 || hour > 12 {
		return text
	}

	hour = hour % 12
	if pm {
		hour += 12
	}
	return fmt.Sprintf("%02d:%s", hour, minute)
}
