package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestChartRender(t *testing.T) {
	var buf bytes.Buffer
	chart := Chart{Title: "Test Plot", Width: 12, Height: 4}
	err := chart.Render(&buf,
		Curve{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		Curve{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
	)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Test Plot", "A: min=1.00 max=3.00", "B: min=1.00 max=4.00", "Legend: A (solid)  B (dashed)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// title + 2 ranges + 4 rows + legend
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[3], "max │ ") || !strings.HasPrefix(lines[6], "min │ ") {
		t.Fatalf("unexpected axis labels:\n%s", out)
	}
}

func TestChartSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (Chart{Width: 10}).Render(&buf, Curve{Name: "empty"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(80); got != 80-axisWidth() {
		t.Fatalf("unexpected width %d", got)
	}
	if got := ChartWidthFor(0); got != minChartWidth {
		t.Fatalf("expected min width %d, got %d", minChartWidth, got)
	}
}

func TestResample(t *testing.T) {
	down := resample([]float64{1, 3, 5, 7}, 2)
	if down[0] != 2 || down[1] != 6 {
		t.Fatalf("unexpected downsample %v", down)
	}
	up := resample([]float64{0, 10}, 3)
	if up[0] != 0 || up[1] != 5 || up[2] != 10 {
		t.Fatalf("unexpected upsample %v", up)
	}
	flat := resample([]float64{4}, 3)
	if flat[0] != 4 || flat[2] != 4 {
		t.Fatalf("unexpected single-value resample %v", flat)
	}
}

func TestChartRangeUsesSourceValues(t *testing.T) {
	var buf bytes.Buffer
	chart := Chart{Width: 10, Height: 4}
	if err := chart.Render(&buf, Curve{Name: "WPM", Values: []float64{40, 90, 41, 42, 38, 95, 40, 41, 39, 43, 44, 37, 60}}); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "WPM: min=37.00 max=95.00") {
		t.Fatalf("expected range of the source series:\n%s", buf.String())
	}
}
