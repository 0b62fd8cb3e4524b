package widgets

import (
	"strconv"
	"strings"

	"go-pianoroll/sequencer"
)

// ColumnWidths splits width characters over one measure of grid cells
func ColumnWidths(mc *sequencer.MusicContext, width int) []int {
	return sequencer.Cells(width, sequencer.PercentPerTick(mc))
}

// RowHeights splits height lines over the scale's pitch rows. Every row gets
// at least one line.
func RowHeights(mc *sequencer.MusicContext, height int) []int {
	if height < mc.ScaleSize() {
		height = mc.ScaleSize()
	}
	return sequencer.Cells(height, sequencer.PercentPerInterval(mc))
}

// RenderRuler labels each quarter note with its beat number (1-4) and marks
// the playhead tick with a caret on a second line. playTick < 0 hides it.
func RenderRuler(mc *sequencer.MusicContext, widths []int, playTick int) string {
	var beats, head strings.Builder
	for tick, w := range widths {
		label := ""
		if tick%mc.Division() == 0 {
			label = strconv.Itoa(tick/mc.Division() + 1)
		}
		beats.WriteString(pad(label, w))

		mark := ""
		if tick == playTick {
			mark = "^"
		}
		head.WriteString(pad(mark, w))
	}
	return beats.String() + "\n" + head.String()
}

func pad(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) >= w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}
