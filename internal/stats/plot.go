package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Curve is a named series drawn on a Chart.
type Curve struct {
	Name   string
	Values []float64
}

// Chart renders curves as braille line plots, each scaled to its own range.
type Chart struct {
	Title  string
	Width  int
	Height int
	// Color forces ANSI colors even when w is not a terminal.
	Color bool
}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	fallbackTermWidth  = 80
	axisGutter         = " │ "
	ansiReset          = "\x1b[0m"
)

// dash patterns: draw when x%period < on.
var dashes = []struct {
	name       string
	period, on int
}{
	{"solid", 1, 1},
	{"dashed", 6, 3},
	{"dotted", 4, 1},
}

var palette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// ChartWidthFor returns the plot width that fits totalWidth columns once the axis is drawn.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	return max(minChartWidth, totalWidth-axisWidth())
}

func axisWidth() int {
	return len("max") + runewidth.StringWidth(axisGutter)
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

// Render writes the chart. Empty curves are skipped; nothing is written when all are empty.
func (c Chart) Render(w io.Writer, curves ...Curve) error {
	var drawn []Curve
	for _, cv := range curves {
		if len(cv.Values) > 0 {
			drawn = append(drawn, cv)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	width := c.Width
	if width <= 0 {
		width = ChartWidthFor(TerminalWidth())
	}
	width = max(width, minChartWidth)
	height := c.Height
	if height <= 0 {
		height = defaultChartHeight
	}
	color := wantColor(w, c.Color)

	layers := make([]*canvas, len(drawn))
	var lines []string
	if c.Title != "" {
		lines = append(lines, c.Title)
	}
	for i, cv := range drawn {
		values := resample(cv.Values, width)
		lo, hi := minMax(cv.Values)
		lines = append(lines, fmt.Sprintf("%s: min=%.2f max=%.2f", cv.Name, lo, hi))
		if hi-lo < 1e-9 {
			lo, hi = lo-1, hi+1
		}
		layers[i] = newCanvas(width, height)
		layers[i].plot(values, lo, hi, dashes[i%len(dashes)].period, dashes[i%len(dashes)].on)
	}

	for y := 0; y < height; y++ {
		var row strings.Builder
		label := ""
		switch y {
		case 0:
			label = "max"
		case height - 1:
			label = "min"
		}
		row.WriteString(fmt.Sprintf("%3s%s", label, axisGutter))
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, layer := range layers {
				if m := layer.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			ch := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				row.WriteString(palette[owner%len(palette)] + string(ch) + ansiReset)
				continue
			}
			row.WriteRune(ch)
		}
		lines = append(lines, row.String())
	}

	legend := make([]string, len(drawn))
	for i, cv := range drawn {
		label := fmt.Sprintf("%s (%s)", cv.Name, dashes[i%len(dashes)].name)
		if color {
			label = palette[i%len(palette)] + label + ansiReset
		}
		legend[i] = label
	}
	lines = append(lines, "Legend: "+strings.Join(legend, "  "), "")
	return writeLines(w, lines)
}

func wantColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// canvas is a grid of braille cells, each 2 dots wide and 4 dots tall.
type canvas struct {
	cells [][]uint8
	dotsW int
	dotsH int
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for i := range cells {
		cells[i] = make([]uint8, width)
	}
	return &canvas{cells: cells, dotsW: width * 2, dotsH: height * 4}
}

// brailleBits maps a dot position inside a cell (x*4+y) to its bit.
var brailleBits = [8]uint8{0x01, 0x02, 0x04, 0x40, 0x08, 0x10, 0x20, 0x80}

func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 || x >= c.dotsW || y >= c.dotsH {
		return
	}
	c.cells[y/4][x/2] |= brailleBits[(x%2)*4+y%4]
}

func (c *canvas) plot(values []float64, lo, hi float64, period, on int) {
	visible := func(x int) bool { return period <= 1 || x%period < on }
	prevX, prevY := -1, -1
	for i, v := range values {
		x := i * 2
		y := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(c.dotsH-1)))
		y = max(0, min(y, c.dotsH-1))
		if prevX < 0 {
			if visible(x) {
				c.set(x, y)
			}
		} else {
			line(prevX, prevY, x, y, func(px, py int) {
				if visible(px) {
					c.set(px, py)
				}
			})
		}
		prevX, prevY = x, y
	}
}

// line walks a Bresenham line from (x0,y0) to (x1,y1).
func line(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// resample fits values to width points: bucket means when shrinking, linear interpolation when growing.
func resample(values []float64, width int) []float64 {
	n := len(values)
	out := make([]float64, width)
	switch {
	case n == 0 || width <= 0:
		return nil
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := max((i+1)*n/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := min(int(pos), n-2)
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}
