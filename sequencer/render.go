package sequencer

// Canvas geometry. These are recomputed from the context on every call and
// never cached.

// PercentPerTick is the width of one grid cell as a percentage of one measure.
func PercentPerTick(c *MusicContext) float64 {
	return 100 / float64(QuartersPerMeasure*c.division)
}

// PercentPerInterval is the height of one pitch row as a percentage of the canvas.
func PercentPerInterval(c *MusicContext) float64 {
	return 100 / float64(len(c.scale))
}

// Cells distributes a canvas of width units over n cells of pct percent each,
// returning the width of every cell. Rounding error is spread so the widths
// always sum to the canvas size.
func Cells(canvas int, pct float64) []int {
	if pct <= 0 || canvas <= 0 {
		return nil
	}
	n := int(100/pct + 0.5)
	widths := make([]int, n)
	used := 0
	for i := range widths {
		end := int(float64(canvas) * pct * float64(i+1) / 100)
		if i == n-1 {
			end = canvas
		}
		widths[i] = end - used
		used = end
	}
	return widths
}
