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

package rhef

import (
	"math"
)

// RadiusMap computes the distance of every pixel to the given center point,
// in row-major order. The center is 0-based, fractional coordinates are fine.
// Pure function; width and height must be positive.
func RadiusMap(width, height int32, centerX, centerY float32) []float32 {
	radii:=make([]float32, int(width)*int(height))
	for y:=0; y<int(height); y++ {
		dy  :=float32(y)-centerY
		dySq:=dy*dy
		row :=radii[y*int(width) : (y+1)*int(width)]
		for x:=range(row) {
			dx:=float32(x)-centerX
			row[x]=float32(math.Sqrt(float64(dx*dx+dySq)))
		}
	}
	return radii
}
