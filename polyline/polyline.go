// Package polyline implements Google's encoded polyline algorithm format.
//
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"math"
	"strings"
)

// Precision is the scale applied to each coordinate before encoding, i.e. five
// decimal digits.
const Precision = 1e5

type Point struct {
	Latitude  float64
	Longitude float64
}

// Encode encodes the points in order. Each coordinate is scaled by Precision
// and rounded, then written as the difference from the previous point's
// rounded value. An empty input encodes to the empty string.
//
// The output may contain backslashes; it must be escaped before being placed
// in a JSON or source string literal.
func Encode(points []Point) string {
	var b strings.Builder
	var prevLat, prevLng int64
	for _, p := range points {
		lat := int64(math.Round(p.Latitude * Precision))
		lng := int64(math.Round(p.Longitude * Precision))
		writeSigned(&b, lat-prevLat)
		writeSigned(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}

func writeSigned(b *strings.Builder, v int64) {
	shifted := v << 1
	if v < 0 {
		shifted = ^shifted
	}
	u := uint64(shifted)
	for u >= 0x20 {
		b.WriteByte(byte(0x20|(u&0x1f)) + 63)
		u >>= 5
	}
	b.WriteByte(byte(u) + 63)
}
