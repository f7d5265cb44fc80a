package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/particlesim/internal/particle"
)

const background = "#0a0a0a"

// ParticlesToSVG draws every particle as a circle at its true radius. The
// world rectangle is scaled by scale; fill colour runs from blue (at rest) to
// red (at or above maxSpeed).
func ParticlesToSVG(v particle.View, width, height, scale, maxSpeed float64) string {
	if scale <= 0 {
		scale = 1
	}
	w, h := width*scale, height*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g stroke="none">
`, w, h, w, h, background)

	for i := 0; i < v.Len(); i++ {
		p := v.At(i)
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, p.X*scale, p.Y*scale, p.Radius*scale, speedColor(math.Hypot(p.VX, p.VY), maxSpeed))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func speedColor(speed, maxSpeed float64) string {
	t := 0.0
	if maxSpeed > 0 {
		t = math.Min(speed/maxSpeed, 1)
	}
	r := int(40 + t*215)
	b := int(255 - t*215)
	return fmt.Sprintf("#%02x%02x%02x", r, 110, b)
}

// SeriesToSVG plots a metric series against time as a single path.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	if n < 2 {
		return ""
	}

	minX, maxX := times[0], times[n-1]
	minY, maxY := values[0], values[0]
	for _, v := range values[:n] {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i := 0; i < n; i++ {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
