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
	"testing"
)

var toneExponents = []float32{0.1, 0.4, 0.7, 1, 2.5}

func TestToneContinuity(t *testing.T) {
	vHigh := math.Nextafter32(0.5, 1)
	for _, yl := range toneExponents {
		for _, yh := range toneExponents {
			if got := Tone(0.5, yl, yh); got != 0.5 {
				t.Errorf("tone(0.5) with yl=%f yh=%f = %f; want exactly 0.5", yl, yh, got)
			}
			if got := Tone(vHigh, yl, yh); math.Abs(float64(got)-0.5) > 1e-6 {
				t.Errorf("tone(0.5+) with yl=%f yh=%f = %f; want 0.5", yl, yh, got)
			}
		}
	}
}

func TestToneMonotonicity(t *testing.T) {
	for _, yl := range toneExponents {
		for _, yh := range toneExponents {
			prev := float32(-1)
			for i := 0; i <= 256; i++ {
				v := float32(i) / 256.0
				got := Tone(v, yl, yh)
				if got < prev {
					t.Errorf("tone not monotonic at v=%f yl=%f yh=%f: %f < %f", v, yl, yh, got, prev)
				}
				prev = got
			}
		}
	}
}

func TestToneDefaults(t *testing.T) {
	type toneSample struct {
		V, Want float32
	}
	samples := []toneSample{
		{0, 0},
		{0.25, 0.3077861},
		{0.5, 0.5},
		{0.75, 0.6210709},
		{1, 1},
	}
	for _, s := range samples {
		got := Tone(s.V, DefaultYLow, DefaultYHigh)
		if math.Abs(float64(got-s.Want)) > 1e-6 {
			t.Errorf("tone(%f)=%f; want %f", s.V, got, s.Want)
		}
	}
}

func TestApplyToneCurveClamps(t *testing.T) {
	data := []float32{-0.25, float32(math.NaN()), 1.5, 0.25, 0}
	clamped := ApplyToneCurve(data, DefaultYLow, DefaultYHigh, 1)
	if clamped != 3 {
		t.Errorf("clamped=%d; want 3", clamped)
	}
	if data[0] != 0 || data[1] != 0 {
		t.Errorf("negative and NaN mapped to %f and %f; want 0", data[0], data[1])
	}
	if data[2] != 1 {
		t.Errorf("overrange mapped to %f; want 1", data[2])
	}
	if math.Abs(float64(data[3]-0.3077861)) > 1e-6 {
		t.Errorf("data[3]=%f; want 0.3077861", data[3])
	}
	if data[4] != 0 {
		t.Errorf("data[4]=%f; want 0", data[4])
	}
}
