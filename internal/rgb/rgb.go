// Package rgb decodes the color literals Typst reports for entry types.
package rgb

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/x/ansi"

	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

const (
	literalPrefix = `rgb("#`
	literalSuffix = `")`
)

// RGB is a 24-bit color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Decode parses a literal of the exact form rgb("#RRGGBB").
func Decode(literal string) (RGB, error) {
	if !strings.HasPrefix(literal, literalPrefix) {
		return RGB{}, apperrors.NewColorError(literal, "missing "+literalPrefix+" prefix", nil)
	}
	body := strings.TrimPrefix(literal, literalPrefix)
	if !strings.HasSuffix(body, literalSuffix) {
		return RGB{}, apperrors.NewColorError(literal, "missing "+literalSuffix+" suffix", nil)
	}
	body = strings.TrimSuffix(body, literalSuffix)

	if len(body)%2 != 0 {
		return RGB{}, apperrors.NewColorError(literal, "odd number of hex digits", nil)
	}
	octets, err := hex.DecodeString(body)
	if err != nil {
		return RGB{}, apperrors.NewColorError(literal, "invalid hex digits", err)
	}
	if len(octets) != 3 {
		return RGB{}, apperrors.NewColorError(literal, fmt.Sprintf("expected 3 octets, got %d", len(octets)), nil)
	}

	return RGB{R: octets[0], G: octets[1], B: octets[2]}, nil
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
}

// Literal returns the Typst form of the color.
func (c RGB) Literal() string {
	return literalPrefix + strings.TrimPrefix(c.Hex(), "#") + literalSuffix
}

// ForegroundSequence returns the 24-bit SGR escape that sets the foreground to c.
func (c RGB) ForegroundSequence() string {
	return ansi.Style{}.ForegroundColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}).String()
}

