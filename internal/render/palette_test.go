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
	"testing"
)

func TestPaletteEndpoints(t *testing.T) {
	c := EUV.At(0)
	if c.R > 0.01 || c.G > 0.01 || c.B > 0.01 {
		t.Errorf("At(0)=(%f,%f,%f); want black", c.R, c.G, c.B)
	}
	c = EUV.At(1)
	if c.R < 0.99 || c.G < 0.99 || c.B < 0.99 {
		t.Errorf("At(1)=(%f,%f,%f); want white", c.R, c.G, c.B)
	}

	// out of range positions take the end keypoint colors
	if EUV.At(-0.5) != EUV[0].Col {
		t.Errorf("At(-0.5) differs from the first keypoint")
	}
	if EUV.At(1.5) != EUV[len(EUV)-1].Col {
		t.Errorf("At(1.5) differs from the last keypoint")
	}
}

func TestPaletteBrightnessAscends(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 20; i++ {
		l, _, _ := EUV.At(float32(i) / 20.0).Luv()
		if l < prev-0.01 {
			t.Errorf("lightness dropped at %d/20: %f after %f", i, l, prev)
		}
		prev = l
	}
}

func TestPaletteLUT(t *testing.T) {
	lut := EUV.LUT()
	if len(lut) != 256 {
		t.Fatalf("len(lut)=%d; want 256", len(lut))
	}
	if lut[0] != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("lut[0]=%v; want opaque black", lut[0])
	}
	if lut[255] != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("lut[255]=%v; want opaque white", lut[255])
	}

	// midrange entries are warm: red leads blue
	for _, i := range []int{96, 128, 160} {
		if lut[i].R <= lut[i].B {
			t.Errorf("lut[%d]=%v; want red above blue", i, lut[i])
		}
	}
}
