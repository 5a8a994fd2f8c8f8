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
	"sync/atomic"

	"github.com/mlnoga/sunstretch/internal/fits"
)

// Default gamma exponents for the shadow and highlight halves of the tone curve
const (
	DefaultYLow  float32 = 0.7
	DefaultYHigh float32 = 0.4
)

// Tone remaps a single equalized value in [0,1] with the two-segment gamma
// curve. The shadow half v<=0.5 maps to 0.5*(2v)^yl, the highlight half to
// 0.5*(2-(2*(1-v))^yh). Both halves meet exactly at Tone(0.5)=0.5 and are
// monotonically non-decreasing for positive exponents.
func Tone(v, yl, yh float32) float32 {
	if v<=0.5 {
		return 0.5*float32(math.Pow(float64(2*v), float64(yl)))
	}
	return 0.5*(2-float32(math.Pow(float64(2*(1-v)), float64(yh))))
}

type pfToneArgs struct {
	Clamped int32 // count of values clamped into [0,1], updated atomically
	YLow    float32
	YHigh   float32
}

// pixel function. clamps values into [0,1], then applies the tone curve
func pfTone(data []float32, params interface{}) {
	p:=params.(*pfToneArgs)
	yl, yh:=p.YLow, p.YHigh
	clamped:=int32(0)
	for i, d:=range(data) {
		if !(d>0) {
			if d!=0 { clamped++ }  // negatives and NaNs
			d=0
		} else if d>1 {
			d=1
			clamped++
		}
		data[i]=Tone(d, yl, yh)
	}
	if clamped>0 { atomic.AddInt32(&p.Clamped, clamped) }
}

// ApplyToneCurve clamps all values into [0,1] and applies the two-segment
// gamma curve in place, in parallel on up to maxThreads CPUs, or all
// available CPUs if maxThreads is zero. Returns the number of values that
// had to be clamped; equalized input stays within [0,1], so a nonzero count
// indicates numeric trouble upstream.
func ApplyToneCurve(data []float32, yl, yh float32, maxThreads int) (clamped int32) {
	args:=pfToneArgs{YLow: yl, YHigh: yh}
	fits.ApplyPixelFunction(data, pfTone, &args, maxThreads)
	return args.Clamped
}
