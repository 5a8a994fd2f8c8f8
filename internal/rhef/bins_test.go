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
	"testing"

	"github.com/valyala/fastrand"

	"github.com/mlnoga/sunstretch/internal/fits"
)

func TestBinRadially4x4(t *testing.T) {
	radii := RadiusMap(4, 4, 1.5, 1.5)
	bins := BinRadially(radii, 1)
	if bins.NumBins() != 3 {
		t.Fatalf("numBins=%d; want 3", bins.NumBins())
	}
	wantCounts := []int32{4, 8, 4}
	for b := int32(0); b < 3; b++ {
		if bins.Count(b) != wantCounts[b] {
			t.Errorf("count[%d]=%d; want %d", b, bins.Count(b), wantCounts[b])
		}
	}
	if !fits.EqualInt32Slice(bins.Bin(0), []int32{5, 6, 9, 10}) {
		t.Errorf("bin 0=%v; want [5 6 9 10]", bins.Bin(0))
	}
	if !fits.EqualInt32Slice(bins.Bin(1), []int32{1, 2, 4, 7, 8, 11, 13, 14}) {
		t.Errorf("bin 1=%v; want [1 2 4 7 8 11 13 14]", bins.Bin(1))
	}
	if !fits.EqualInt32Slice(bins.Bin(2), []int32{0, 3, 12, 15}) {
		t.Errorf("bin 2=%v; want [0 3 12 15]", bins.Bin(2))
	}
}

func TestBinRadiallyCoverage(t *testing.T) {
	rng := fastrand.RNG{}
	radii := make([]float32, 10000)
	for i := range radii {
		radii[i] = float32(rng.Uint32n(1000)) / 100.0
	}

	bins := BinRadially(radii, 1)
	seen := make([]bool, len(radii))
	total := int32(0)
	for b := int32(0); b < bins.NumBins(); b++ {
		idx := bins.Bin(b)
		if int32(len(idx)) != bins.Count(b) {
			t.Errorf("bin %d count=%d but %d members", b, bins.Count(b), len(idx))
		}
		total += bins.Count(b)
		prev := int32(-1)
		for _, id := range idx {
			if seen[id] {
				t.Fatalf("pixel %d in more than one bin", id)
			}
			seen[id] = true
			if want := int32(radii[id]); want != b {
				t.Errorf("pixel %d with radius %f in bin %d; want %d", id, radii[id], b, want)
			}
			if id <= prev {
				t.Errorf("bin %d indices not ascending at %d", b, id)
			}
			prev = id
		}
	}
	if total != int32(len(radii)) {
		t.Errorf("total members=%d; want %d", total, len(radii))
	}
	for i, s := range seen {
		if !s {
			t.Fatalf("pixel %d not binned", i)
		}
	}
}

func TestBinRadiallyEmptyBins(t *testing.T) {
	bins := BinRadially([]float32{0.5, 2.5}, 1)
	if bins.NumBins() != 3 {
		t.Fatalf("numBins=%d; want 3", bins.NumBins())
	}
	if bins.Count(0) != 1 || bins.Count(1) != 0 || bins.Count(2) != 1 {
		t.Errorf("counts=[%d %d %d]; want [1 0 1]", bins.Count(0), bins.Count(1), bins.Count(2))
	}
	if len(bins.Bin(1)) != 0 {
		t.Errorf("bin 1=%v; want empty", bins.Bin(1))
	}
}

func TestBinRadiallyBinsize(t *testing.T) {
	bins := BinRadially([]float32{0, 1.9, 2, 3.9, 4}, 2)
	if bins.NumBins() != 3 {
		t.Fatalf("numBins=%d; want 3", bins.NumBins())
	}
	if !fits.EqualInt32Slice(bins.Bin(0), []int32{0, 1}) {
		t.Errorf("bin 0=%v; want [0 1]", bins.Bin(0))
	}
	if !fits.EqualInt32Slice(bins.Bin(1), []int32{2, 3}) {
		t.Errorf("bin 1=%v; want [2 3]", bins.Bin(1))
	}
	if !fits.EqualInt32Slice(bins.Bin(2), []int32{4}) {
		t.Errorf("bin 2=%v; want [4]", bins.Bin(2))
	}
}
