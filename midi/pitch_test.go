package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePitch(t *testing.T) {
	cases := []struct {
		name string
		want uint8
	}{
		{"c4", 60},
		{"C4", 60},
		{"c#4", 61},
		{"db4", 61},
		{"a4", 69},
		{"b3", 59},
		{"c-1", 0},
		{"g9", 127},
		{"e#2", 41},
		{" f6 ", 89},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePitch(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParsePitchRejects(t *testing.T) {
	for _, name := range []string{"", "h4", "c", "c#", "c10", "cb-1", "4c"} {
		_, err := ParsePitch(name)
		assert.ErrorIs(t, err, ErrBadPitch, name)
	}
}

func TestVelocity7(t *testing.T) {
	assert.Equal(t, uint8(1), Velocity7(0))
	assert.Equal(t, uint8(64), Velocity7(0.5))
	assert.Equal(t, uint8(127), Velocity7(1))
	assert.Equal(t, uint8(127), Velocity7(3))
}
