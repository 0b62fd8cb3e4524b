package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/sequencer"
	"go-pianoroll/theme"
)

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestColumnWidthsFillCanvas(t *testing.T) {
	mc := sequencer.DefaultMusicContext()
	widths := ColumnWidths(mc, 50)
	assert.Len(t, widths, 16)
	assert.Equal(t, 50, sum(widths))
}

func TestRowHeightsNeverZero(t *testing.T) {
	mc := sequencer.DefaultMusicContext()
	heights := RowHeights(mc, 5)
	assert.Len(t, heights, 12)
	for _, h := range heights {
		assert.GreaterOrEqual(t, h, 1)
	}

	heights = RowHeights(mc, 24)
	assert.Equal(t, 24, sum(heights))
}

func TestRenderRuler(t *testing.T) {
	mc := sequencer.DefaultMusicContext()
	widths := ColumnWidths(mc, 32)
	out := RenderRuler(mc, widths, 5)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1       2       3       4       ", lines[0])
	assert.Equal(t, 10, strings.Index(lines[1], "^"))
}

func TestGridView(t *testing.T) {
	mc := sequencer.DefaultMusicContext()
	track := sequencer.NewTrack()
	n, err := sequencer.NewNote(0, 2, 3, 1)
	require.NoError(t, err)
	require.NoError(t, track.AddNote(n))

	g := Grid{
		Track:    track,
		Context:  mc,
		Theme:    theme.New(theme.Plasma()),
		Width:    32,
		Height:   12,
		CursorX:  0,
		CursorY:  11,
		PlayTick: -1,
	}
	out := g.View()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2+12)

	for _, l := range lines {
		assert.Equal(t, LabelWidth+32, lipgloss.Width(l))
	}
	assert.True(t, strings.HasPrefix(lines[2], "B4"), "highest pitch first")
	assert.Contains(t, lines[2], "○")
	bottom := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(bottom, "C4"))
	assert.Contains(t, bottom, "●")
	assert.Equal(t, 1, strings.Count(bottom, "●"))
}

func TestRenderKeyHelp(t *testing.T) {
	sections := []KeySection{{
		Title: "Transport",
		Keys:  []KeyBinding{{"p", "play"}, {"q", "quit"}},
	}}
	assert.Equal(t, "Transport\n  p            play\n  q            quit", RenderKeyHelp(sections))
	assert.Equal(t, "p:play  q:quit", RenderKeyLine(sections))
}
