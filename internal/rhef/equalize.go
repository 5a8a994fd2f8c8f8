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
	"runtime"
	"sync/atomic"

	"gonum.org/v1/gonum/interp"

	"github.com/mlnoga/sunstretch/internal/qsort"
)

// SingletonValue is the equalized value assigned to an annulus with a single
// member pixel, where the rank target k/(n-1) is undefined. It equals the
// value an all-tied annulus of any size receives under the average rank rule.
const SingletonValue float32 = 0.5

// EqualizeAnnuli equalizes the intensity histogram of each annulus
// independently into [0,1] and returns the result as a new buffer, together
// with the number of singleton annuli encountered. The input is not modified.
// Annuli are processed in parallel on up to maxThreads CPUs, or all available
// CPUs if maxThreads is zero; their pixel index sets are disjoint, so the
// workers write to non-overlapping parts of the output.
func EqualizeAnnuli(data []float32, bins *Bins, maxThreads int) (out []float32, singletons int32) {
	out=make([]float32, len(data))

	numCPUs:=runtime.NumCPU()
	if maxThreads>0 && maxThreads<numCPUs { numCPUs=maxThreads }
	sem:=make(chan bool, numCPUs)
	for b:=int32(0); b<bins.NumBins(); b++ {
		idx:=bins.Bin(b)
		if len(idx)==0 { continue }
		sem <- true
		go func(idx []int32) {
			equalizeAnnulus(data, idx, out, &singletons)
			<-sem
		}(idx)
	}
	for i:=0; i<cap(sem); i++ {  // wait for goroutines to finish
		sem <- true
	}
	return out, singletons
}

// Equalizes a single annulus given by its member pixel indices. Ranks the
// member values, maps rank k of n to the target k/(n-1), and rewrites each
// member as the rank target of its own value. Runs of tied values collapse to
// the mean of their rank targets, so equal inputs receive equal outputs and
// monotonicity is preserved.
func equalizeAnnulus(data []float32, idx []int32, out []float32, singletons *int32) {
	n:=len(idx)
	if n==1 {
		out[idx[0]]=SingletonValue
		atomic.AddInt32(singletons, 1)
		return
	}

	values:=make([]float32, n)
	for i, id:=range(idx) { values[i]=data[id] }
	perm:=qsort.QSortPermFloat32(values)

	// build interpolation knots over the distinct sorted values
	xs    :=make([]float64, 0, n)
	ys    :=make([]float64, 0, n)
	invNm1:=1.0/float64(n-1)
	for k:=0; k<n; {
		v:=values[perm[k]]
		kEnd:=k+1
		for kEnd<n && values[perm[kEnd]]==v { kEnd++ }
		xs=append(xs, float64(v))
		ys=append(ys, float64(k+kEnd-1)*0.5*invNm1)
		k=kEnd
	}

	if len(xs)==1 {  // all members tied
		for _, id:=range(idx) { out[id]=float32(ys[0]) }
		return
	}

	var pl interp.PiecewiseLinear
	pl.Fit(xs, ys)  // xs strictly increasing by construction
	for i, id:=range(idx) {
		out[id]=float32(pl.Predict(float64(values[i])))
	}
}
