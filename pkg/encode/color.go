package encode

import "fmt"

// Color is an RGB triple with channels in [0,1]. Blending happens in this
// linear space; conversion to hex is only for wire payloads.
type Color struct {
	R float64 `json:"r" bson:"r"`
	G float64 `json:"g" bson:"g"`
	B float64 `json:"b" bson:"b"`
}

// Lerp returns the linear interpolation between c and o at t in [0,1].
func (c Color) Lerp(o Color, t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// hex builds a Color from packed 0xRRGGBB, for the palette tables.
func hex(rgb uint32) Color {
	return Color{
		R: float64((rgb>>16)&0xff) / 255,
		G: float64((rgb>>8)&0xff) / 255,
		B: float64(rgb&0xff) / 255,
	}
}
