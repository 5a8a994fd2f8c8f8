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

// Bins groups pixel indices into radial annuli of the given width, stored in
// compressed form: member indices of all bins live back to back in a single
// array, with per-bin offsets into it. Bin b holds the pixels whose radius
// falls in [b*binsize, (b+1)*binsize).
type Bins struct {
	Binsize float32
	offsets []int32 // start of each bin in indices; len numBins+1
	indices []int32 // member pixel indices, bin by bin, ascending within each bin
}

// BinRadially groups pixel indices by their radial bin floor(radius/binsize).
// Every pixel lands in exactly one bin; bins with no members remain present
// with a count of zero. Within each bin, indices are in ascending row-major
// order. binsize must be positive and radii non-negative and finite.
func BinRadially(radii []float32, binsize float32) *Bins {
	maxBin:=int32(0)
	for _, r:=range(radii) {
		if b:=int32(r/binsize); b>maxBin { maxBin=b }
	}
	numBins:=maxBin+1

	// count members per bin, then prefix sum into bin offsets
	offsets:=make([]int32, numBins+1)
	for _, r:=range(radii) {
		offsets[int32(r/binsize)+1]++
	}
	for b:=int32(1); b<=numBins; b++ {
		offsets[b]+=offsets[b-1]
	}

	// second pass fills members in ascending pixel index order
	indices:=make([]int32, len(radii))
	cursor :=make([]int32, numBins)
	copy(cursor, offsets[:numBins])
	for i, r:=range(radii) {
		b:=int32(r/binsize)
		indices[cursor[b]]=int32(i)
		cursor[b]++
	}

	return &Bins{Binsize: binsize, offsets: offsets, indices: indices}
}

// NumBins returns the number of bins, including empty ones.
func (b *Bins) NumBins() int32 { return int32(len(b.offsets))-1 }

// Count returns the number of member pixels in the given bin.
func (b *Bins) Count(bin int32) int32 { return b.offsets[bin+1]-b.offsets[bin] }

// Bin returns the member pixel indices of the given bin, in ascending order.
// The result aliases internal storage and must not be modified.
func (b *Bins) Bin(bin int32) []int32 { return b.indices[b.offsets[bin]:b.offsets[bin+1]] }
