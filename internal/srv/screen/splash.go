package screen

// Splash renders a single centered label, used for the intro and the
// goodbye frames.
func (p Panel) Splash(text string) Result {
	canvas := p.NewCanvas()
	canvas.AddCenteredLabel((p.Height-SPLASH_FONT.Face().Metrics().Height.Ceil())/2, text, SPLASH_FONT, PrimaryColour)
	return Result{Frame: canvas, Block: true, Brightness: FullBrightness}
}
