package screen

// MarqueePause is the number of frames a scrolling text rests at each end
const MarqueePause = 40

// FilmPageTicks is the number of film frames a page stays on screen
const FilmPageTicks = 400

// MarqueeShift returns how many pixels a text wider than the view is moved
// left at frame offset: it rests, scrolls until its right edge reaches the
// view edge, rests again, then starts over.
func MarqueeShift(offset, textWidth, viewWidth int) int {
	distance := textWidth - viewWidth
	if distance <= 0 || offset < 0 {
		return 0
	}

	position := offset % (2*MarqueePause + distance)
	switch {
	case position < MarqueePause:
		return 0
	case position < MarqueePause+distance:
		return position - MarqueePause
	default:
		return distance
	}
}

// ScrollState is the marquee and pagination position of a mode. It lives as
// long as the process and is not reset when the mode is left.
type ScrollState struct {
	Offset    int
	Page      int
	PageTicks int
}

// FilmTick moves the films marquee one frame and turns the page every
// FilmPageTicks frames.
func (s *ScrollState) FilmTick() {
	s.Offset++
	s.PageTicks++
	if s.PageTicks >= FilmPageTicks {
		s.PageTicks = 0
		s.Page++
	}
}

// MessageTick turns the messages page after every frame, back to the first
// page after the last one.
func (s *ScrollState) MessageTick(hasMore bool) {
	if hasMore {
		s.Page++
	} else {
		s.Page = 0
	}
}

// PageCount is the number of pages needed for items, at least one
func PageCount(items, perPage int) int {
	if perPage <= 0 || items <= 0 {
		return 1
	}
	return (items + perPage - 1) / perPage
}
