package rgb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

func TestDecodeValidLiteral(t *testing.T) {
	t.Parallel()

	c, err := Decode(`rgb("#FF8000")`)
	require.NoError(t, err)
	require.Equal(t, RGB{R: 0xff, G: 0x80, B: 0x00}, c)
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"000000", "ffffff", "0A1b2C", "DEADBE", "7f7f7f"} {
		c, err := Decode(`rgb("#` + h + `")`)
		require.NoError(t, err, h)
		require.Equal(t, "#"+strings.ToLower(h), c.Hex())
		require.Equal(t, `rgb("#`+strings.ToLower(h)+`")`, c.Literal())
	}
}

func TestDecodeRejectsMalformedLiterals(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"short":        `rgb("#fff")`,
		"long":         `rgb("#ff00ff00")`,
		"odd":          `rgb("#ff00f")`,
		"non hex":      `rgb("#gg0000")`,
		"no prefix":    `"#ff0000"`,
		"no suffix":    `rgb("#ff0000"`,
		"luma":         `luma(50%)`,
		"spaced":       `rgb( "#ff0000")`,
		"empty":        ``,
		"empty digits": `rgb("#")`,
	}

	for name, literal := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(literal)
			require.Error(t, err)

			var colorErr *apperrors.ColorError
			require.ErrorAs(t, err, &colorErr)
			require.Equal(t, literal, colorErr.Literal)
		})
	}
}

func TestForegroundSequence(t *testing.T) {
	t.Parallel()

	c := RGB{R: 255, G: 0, B: 16}
	require.Equal(t, "\x1b[38;2;255;0;16m", c.ForegroundSequence())
}
