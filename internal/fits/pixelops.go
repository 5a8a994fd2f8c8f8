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

package fits

import (
	"math"
	"runtime"
)

//////////////////////////////////////////////////////////////////
// Complex, CPU-limited pixel operations. Parallelized across CPUs
//////////////////////////////////////////////////////////////////

// A pixel function. Operates in-place. For parallelization across CPUs.
type PixelFunction func(data []float32, params interface{})

// Apply given pixel function to a raw data slice. Uses thread parallelism
// across up to maxThreads CPUs, or all available CPUs if maxThreads is zero.
// Operates in-place.
func ApplyPixelFunction(data []float32, pf PixelFunction, args interface{}, maxThreads int) {
	numCPUs:=runtime.NumCPU()
	if maxThreads>0 && maxThreads<numCPUs { numCPUs=maxThreads }

	// split into 8*numCPUs work packages, limit parallelism to numCPUs
	numBatches:=8*numCPUs
	batchSize :=(len(data)+numBatches-1)/(numBatches)
	sem       :=make(chan bool, numCPUs)
	for lower:=0; lower<len(data); lower+=batchSize {
		upper:=lower+batchSize
		if upper>len(data) { upper=len(data) }

		sem <- true
		go func(data []float32) {
			pf(data, args)
			<-sem
		}(data[lower:upper])
	}

	for i:=0; i<cap(sem); i++ {  // wait for goroutines to finish
		sem <- true
	}
}

// Apply given pixel function to the image. Uses thread parallelism across all
// available CPUs. Operates in-place.
func (f *Image) ApplyPixelFunction(pf PixelFunction, args interface{}) {
	ApplyPixelFunction(f.Data, pf, args, 0)
}

type pfScaleOffsetArgs struct {
	Scale  float32
	Offset float32
}

// pixel function to apply given scale and offset. data[i]=data[i]*scale + offset
func pfScaleOffset(data []float32, params interface{}) {
	scale :=params.(*pfScaleOffsetArgs).Scale
	offset:=params.(*pfScaleOffsetArgs).Offset
	for i, d:=range(data) {
		data[i]=d*scale+offset
	}
}

// Apply given scale factor and offset to the image. Operates in-place.
// I.e. f.Data[i]=f.Data[i]*scale + offset
func (f *Image) ApplyScaleOffset(scale, offset float32) {
	f.ApplyPixelFunction(pfScaleOffset, &pfScaleOffsetArgs{scale, offset})
	f.Stats.UpdateCachedWith(scale, offset)
}

// Normalize pixel values to the interval [0..1]. A flat image is left
// unchanged. Operates in-place.
func (f *Image) Normalize() {
	min, max:=f.Stats.Min(), f.Stats.Max()
	if !(max>min) { return }
	f.ApplyScaleOffset(1.0/(max-min), -min/(max-min))
}

type pfGammaArgs struct {
	G float32
}

// pixel function to apply gamma correction to data in [0,1]. data[i]=data[i]^(1/gamma)
func pfGamma(data []float32, params interface{}) {
	g :=params.(*pfGammaArgs).G
	gg:=float64(1.0/g)
	for i, d:=range(data) {
		data[i]=float32(math.Pow(float64(d), gg))
	}
}

// Apply gamma correction to an image with pixel values in [0,1]. Operates in-place.
func (f *Image) ApplyGamma(g float32) {
	f.ApplyPixelFunction(pfGamma, &pfGammaArgs{g})
	f.Stats.Clear()
}
