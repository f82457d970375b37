package ui

import "time"

// Fixed row heights of the player screen, top to bottom.
const (
	headerHeight    = 1
	transportHeight = 1
	stripHeight     = 3
	footerHeight    = 1

	minVideoHeight = 3
	minCellWidth   = 10
)

// transportPrefixWidth is the number of columns before the progress bar:
// " ▶  vol   12:34 / 56:78   ".
const transportPrefixWidth = 1 + 3 + 6 + timeFieldWidth + 2

// timeFieldWidth fits "mmm:ss / mmm:ss".
const timeFieldWidth = 15

// Timing constants.
const (
	// commandTimeout bounds a single engine request from the UI.
	commandTimeout = 5 * time.Second

	// touchInterval limits how often pointer motion is reported as an
	// interaction.
	touchInterval = 250 * time.Millisecond

	// logRefreshInterval is how often the log overlay rereads the file.
	logRefreshInterval = 2 * time.Second

	// logBufferLimit is the number of log lines the overlay keeps.
	logBufferLimit = 500
)

// layout describes where each region of the player sits on screen. Rendering
// and mouse hit-testing share it so a click lands on what was drawn.
type layout struct {
	width  int
	height int

	videoTop    int
	videoHeight int

	transportRow int
	barStart     int
	barWidth     int

	stripTop  int
	cellWidth int
	cells     int

	footerRow int
}

func computeLayout(width, height, tracks int) layout {
	l := layout{width: width, height: height}

	l.videoTop = headerHeight
	l.videoHeight = max(height-headerHeight-transportHeight-stripHeight-footerHeight, minVideoHeight)
	l.transportRow = l.videoTop + l.videoHeight
	l.stripTop = l.transportRow + transportHeight
	l.footerRow = l.stripTop + stripHeight

	l.barStart = transportPrefixWidth
	l.barWidth = max(width-transportPrefixWidth-1, 0)

	if tracks > 0 && width > 0 {
		l.cells = min(tracks, max(width/minCellWidth, 1))
		l.cellWidth = width / l.cells
	}
	return l
}

type hitKind int

const (
	hitNone hitKind = iota
	hitVideo
	hitProgress
	hitThumbnail
)

type hit struct {
	kind     hitKind
	fraction float64
	index    int
}

// hitTest maps a screen cell to the player region under it. offset is the
// index of the first visible thumbnail.
func (l layout) hitTest(x, y, offset int) hit {
	switch {
	case y >= l.videoTop && y < l.videoTop+l.videoHeight:
		return hit{kind: hitVideo}

	case y == l.transportRow:
		if l.barWidth <= 0 || x < l.barStart || x >= l.barStart+l.barWidth {
			return hit{}
		}
		if l.barWidth == 1 {
			return hit{kind: hitProgress}
		}
		return hit{kind: hitProgress, fraction: float64(x-l.barStart) / float64(l.barWidth-1)}

	case y >= l.stripTop && y < l.stripTop+stripHeight:
		if l.cellWidth <= 0 {
			return hit{}
		}
		cell := x / l.cellWidth
		if cell >= l.cells {
			return hit{}
		}
		return hit{kind: hitThumbnail, index: offset + cell}
	}
	return hit{}
}

// stripOffset returns the first visible thumbnail so the active one stays in
// view when the playlist is wider than the screen.
func (l layout) stripOffset(active, tracks int) int {
	if l.cells <= 0 || tracks <= l.cells {
		return 0
	}
	offset := active - l.cells/2
	return max(0, min(offset, tracks-l.cells))
}
