// Package palette suggests option colors and picks readable text colors
// for them.
package palette

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	Black = "#000000"
	White = "#ffffff"

	// Fallback is used when no valid suggestion turns up.
	Fallback = "#6C63FF"

	// Background is the terminal background colors are checked against.
	Background = "#1A1B26"
)

const maxSuggestAttempts = 64

// ContrastColor returns black or white, whichever reads better on hex.
// Unparsable input gets white.
func ContrastColor(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return White
	}
	r, g, b := c.LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b > 0.179 {
		return Black
	}
	return White
}

// HashStringToColor maps seed to a saturated mid-lightness color. The same
// seed always gives the same color.
func HashStringToColor(seed string) string {
	h := fnv.New32a()
	h.Write([]byte(seed))
	sum := h.Sum32()

	hue := float64(sum % 360)
	sat := 0.45 + float64((sum>>9)%40)/100
	light := 0.35 + float64((sum>>17)%30)/100
	return colorful.Hsl(hue, sat, light).Clamped().Hex()
}

// IsColorValid rejects unparsable colors and colors that would vanish
// against the background or wash out to white.
func IsColorValid(hex string) bool {
	c, err := colorful.Hex(hex)
	if err != nil {
		return false
	}
	_, _, l := c.Hsl()
	if l < 0.2 || l > 0.85 {
		return false
	}
	bg, _ := colorful.Hex(Background)
	return c.DistanceLab(bg) >= 0.25
}

// Suggest keeps salting label until HashStringToColor produces a valid
// color.
func Suggest(label string, rnd *rand.Rand) string {
	for i := 0; i < maxSuggestAttempts; i++ {
		c := HashStringToColor(label + strconv.FormatUint(rnd.Uint64(), 36))
		if IsColorValid(c) {
			return c
		}
	}
	return Fallback
}
