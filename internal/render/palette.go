// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package render

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// A gradient keypoint: the position in [0,1] where the color is anchored
type PaletteKey struct {
	Pos float32
	Col colorful.Color
}

// A false color palette, defined by gradient keypoints blended in Luv space.
// Keypoints must be sorted by ascending position and span [0,1].
type Palette []PaletteKey

// EUV approximates the familiar golden SDO color tables: black through
// deep red and gold to white for the brightest active regions
var EUV = Palette{
	{0.00, colorful.Color{R: 0.00, G: 0.00, B: 0.00}},
	{0.35, colorful.Color{R: 0.46, G: 0.06, B: 0.02}},
	{0.65, colorful.Color{R: 0.86, G: 0.43, B: 0.06}},
	{0.85, colorful.Color{R: 1.00, G: 0.78, B: 0.31}},
	{1.00, colorful.Color{R: 1.00, G: 1.00, B: 1.00}},
}

// Returns the palette color at position t, blending the two enclosing
// keypoints in Luv space. Positions outside [0,1] take the end colors.
func (p Palette) At(t float32) colorful.Color {
	if len(p) == 0 {
		return colorful.Color{}
	}
	if t <= p[0].Pos {
		return p[0].Col
	}
	for i := 0; i < len(p)-1; i++ {
		k1, k2 := p[i], p[i+1]
		if t <= k2.Pos {
			frac := float64((t - k1.Pos) / (k2.Pos - k1.Pos))
			return k1.Col.BlendLuv(k2.Col, frac).Clamped()
		}
	}
	return p[len(p)-1].Col
}

// Returns a 256-entry lookup table of the palette for 8-bit rendering
func (p Palette) LUT() []color.RGBA {
	lut := make([]color.RGBA, 256)
	for i := range lut {
		r, g, b := p.At(float32(i) / 255.0).RGB255()
		lut[i] = color.RGBA{r, g, b, 0xff}
	}
	return lut
}
