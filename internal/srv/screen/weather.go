package screen

import (
	"fmt"
	"github.com/rubenparnell/departureBoard/internal/srv/upstream"
	"image"
	"math"
	"strconv"
	"time"
)

// WeatherColumns is the number of forecast hours shown side by side
const WeatherColumns = 4

const noWeatherData = "No weather data"

// Weather renders one column per forecast hour. samples and icons are keyed
// by hour, a missing icon is simply not drawn.
func (p Panel) Weather(hours []int, samples map[int]upstream.HourSample, icons map[int]image.Image) Result {
	canvas := p.NewCanvas()
	if len(samples) == 0 {
		canvas.AddCenteredLabel((p.Height-SmallLineHeight)/2, noWeatherData, SMALL_FONT, PrimaryColour)
		return Result{Frame: canvas, Wait: WeatherWait, Brightness: FullBrightness}
	}

	colWidth := p.Width / WeatherColumns
	const top = 1

	for i, hour := range hours {
		if i >= WeatherColumns {
			break
		}
		x := i * colWidth
		sample, ok := samples[hour]
		if !ok {
			continue
		}

		centered := func(text string) int {
			return x + (colWidth-TextWidth(text, SMALL_FONT))/2
		}
		hourText := fmt.Sprintf("%d:00", hour)
		tempText := fmt.Sprintf("%d°", int(math.Round(sample.Temperature)))
		precipText := fmt.Sprintf("%d%%", int(math.Round(sample.PrecipitationProbability)))
		uvText := strconv.FormatFloat(sample.UVIndex, 'f', 1, 64)

		canvas.AddLabel(centered(hourText), top, hourText, SMALL_FONT, PrimaryColour)
		canvas.AddLabel(centered(tempText), top+8, tempText, SMALL_FONT, TempColour)
		canvas.AddLabel(centered(precipText), top+15, precipText, SMALL_FONT, RainColour)
		canvas.AddLabel(centered(uvText), top+22, uvText, SMALL_FONT, UvColour)

		if icon := icons[hour]; icon != nil {
			canvas.Paste(icon, image.Pt(x+(colWidth-icon.Bounds().Dx())/2, top+24))
		}

		if i < WeatherColumns-1 {
			canvas.VLine(x+colWidth-1, 0, p.Height, GridColour)
		}
	}

	return Result{Frame: canvas, Wait: WeatherWait, Brightness: FullBrightness}
}

// GraphSidePanel is the width of the current values column of the graph
const GraphSidePanel = 18

// GraphScale maps forecast values onto graph pixels
type GraphScale struct {
	Width  int
	Height int
	Min    float64
	Max    float64
}

// X places an hour of the day, fractional hours included
func (s GraphScale) X(hour float64) int {
	return int(hour / 24 * float64(s.Width))
}

func (s GraphScale) y(value, min, span float64) int {
	if span == 0 {
		span = 1
	}
	return int(float64(s.Height) - (value-min)/span*float64(s.Height))
}

func (s GraphScale) Temperature(value float64) int {
	return s.y(value, s.Min, s.Max-s.Min)
}

func (s GraphScale) Precipitation(probability float64) int {
	return s.y(probability, 0, 100)
}

func (s GraphScale) UV(index float64) int {
	return s.y(index, 0, 11)
}

// WeatherGraph plots today's temperature, precipitation and UV lines with a
// marker at now, and the current values in a side panel.
func (p Panel) WeatherGraph(day []upstream.HourSample, now time.Time) Result {
	canvas := p.NewCanvas()
	if len(day) == 0 {
		canvas.AddCenteredLabel((p.Height-SmallLineHeight)/2, noWeatherData, SMALL_FONT, PrimaryColour)
		return Result{Frame: canvas, Wait: WeatherWait, Brightness: FullBrightness}
	}

	scale := GraphScale{Width: p.Width - GraphSidePanel, Height: p.Height, Min: day[0].Temperature, Max: day[0].Temperature}
	for _, sample := range day {
		scale.Min = math.Min(scale.Min, sample.Temperature)
		scale.Max = math.Max(scale.Max, sample.Temperature)
	}

	hourOf := func(sample upstream.HourSample) float64 {
		return float64(sample.Time.In(now.Location()).Hour())
	}
	for i := 1; i < len(day); i++ {
		x1, x2 := scale.X(hourOf(day[i-1])), scale.X(hourOf(day[i]))
		canvas.Line(x1, scale.Temperature(day[i-1].Temperature), x2, scale.Temperature(day[i].Temperature), TempColour)
		canvas.Line(x1, scale.Precipitation(day[i-1].PrecipitationProbability), x2, scale.Precipitation(day[i].PrecipitationProbability), RainColour)
		canvas.Line(x1, scale.UV(day[i-1].UVIndex), x2, scale.UV(day[i].UVIndex), UvColour)
	}

	nowX := scale.X(float64(now.Hour()) + float64(now.Minute())/60)
	canvas.VLine(nowX, 0, p.Height, PrimaryColour)

	current := day[len(day)-1]
	for _, sample := range day {
		if sample.Time.In(now.Location()).Hour() == now.Hour() {
			current = sample
			break
		}
	}

	panelX := p.Width - GraphSidePanel
	canvas.VLine(panelX-1, 0, p.Height, SecondaryColour)
	canvas.AddLabel(panelX+1, 0, now.Format("15:04"), SMALL_FONT, PrimaryColour)
	canvas.AddLabel(panelX+1, 7, fmt.Sprintf("%d°", int(math.Round(current.Temperature))), SMALL_FONT, TempColour)
	canvas.AddLabel(panelX+1, 14, fmt.Sprintf("↑%d°", int(math.Round(scale.Max))), SMALL_FONT, MaxColour)
	canvas.AddLabel(panelX+1, 21, fmt.Sprintf("↓%d°", int(math.Round(scale.Min))), SMALL_FONT, MinColour)
	canvas.AddLabel(panelX+1, 28, fmt.Sprintf("%d%%", int(math.Round(current.PrecipitationProbability))), SMALL_FONT, RainColour)
	canvas.AddLabel(panelX+1, 35, "U"+strconv.FormatFloat(current.UVIndex, 'f', 1, 64), SMALL_FONT, UvColour)

	return Result{Frame: canvas, Wait: WeatherWait, Brightness: FullBrightness}
}
