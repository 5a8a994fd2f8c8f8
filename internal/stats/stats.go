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


package stats

import (
	"fmt"
	"math"
	"sync"
	"github.com/valyala/fastrand"
	"github.com/mlnoga/sunstretch/internal/qsort"
)

// Number of samples used by the randomized location and scale estimators
// on large images. Arrays at most this long are evaluated exactly.
const numSamples=128*1024


// Lazily evaluated statistics on a data array. Basic indicators (min, max,
// mean, standard deviation) are computed on first access with a full pass;
// location and scale (median and MAD) use randomized subsampling on large
// arrays. Call Clear() after mutating the underlying data.
type Stats struct {
	data  []float32
	width int32

	mutex      sync.Mutex
	haveMMM    bool
	min        float32
	max        float32
	mean       float32
	haveStdDev bool
	stdDev     float32
	haveRobust bool
	location   float32
	scale      float32
}

// Creates lazily evaluated statistics for the given data array
func NewStats(data []float32, width int32) *Stats {
	return &Stats{data: data, width: width}
}

// Creates lazily evaluated statistics with min, max and mean already known,
// e.g. accumulated while decoding the data
func NewStatsWithMMM(data []float32, width int32, min, max, mean float32) *Stats {
	return &Stats{data: data, width: width, haveMMM: true, min: min, max: max, mean: mean}
}

// Invalidates cached indicators after the underlying data has changed
func (s *Stats) Clear() {
	s.mutex.Lock()
	s.haveMMM, s.haveStdDev, s.haveRobust=false, false, false
	s.mutex.Unlock()
}

// Updates cached indicators to reflect the linear transformation
// data[i]=data[i]*scale + offset, avoiding a recompute
func (s *Stats) UpdateCachedWith(scale, offset float32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	absScale:=scale
	if absScale<0 { absScale=-absScale }
	if s.haveMMM {
		min, max:=s.min*scale+offset, s.max*scale+offset
		if min>max { min, max=max, min }
		s.min, s.max, s.mean=min, max, s.mean*scale+offset
	}
	if s.haveStdDev {
		s.stdDev*=absScale
	}
	if s.haveRobust {
		s.location, s.scale=s.location*scale+offset, s.scale*absScale
	}
}

func (s *Stats) Min() float32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calcMMM()
	return s.min
}

func (s *Stats) Max() float32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calcMMM()
	return s.max
}

func (s *Stats) Mean() float32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calcMMM()
	return s.mean
}

func (s *Stats) StdDev() float32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calcMMM()
	s.calcStdDev()
	return s.stdDev
}

// Returns the location indicator, a sampled approximation of the median
func (s *Stats) Location() float32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calcRobust()
	return s.location
}

// Returns the scale indicator, a sampled approximation of the MAD
// normalized to the standard deviation of a Gaussian
func (s *Stats) Scale() float32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calcRobust()
	return s.scale
}

// Pretty print statistics to string. Evaluates all indicators
func (s *Stats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Location %.6g Scale %.6g",
		s.Min(), s.Max(), s.Mean(), s.StdDev(), s.Location(), s.Scale())
}

func (s *Stats) calcMMM() {
	if s.haveMMM { return }
	s.min, s.mean, s.max=calcMinMeanMax(s.data)
	s.haveMMM=true
}

func (s *Stats) calcStdDev() {
	if s.haveStdDev { return }
	variance:=calcVariance(s.data, s.mean)
	s.stdDev=float32(math.Sqrt(float64(variance)))
	s.haveStdDev=true
}

func (s *Stats) calcRobust() {
	if s.haveRobust { return }
	n:=len(s.data)
	if n==0 {
		s.location, s.scale=0, 0
		s.haveRobust=true
		return
	}
	samples:=make([]float32, minInt(n, numSamples))
	if n<=numSamples {
		copy(samples, s.data)
		s.location=qsort.QSelectMedianFloat32(samples)
		for i, d:=range s.data {
			samples[i]=float32(math.Abs(float64(d-s.location)))
		}
		s.scale=qsort.QSelectMedianFloat32(samples)*1.4826
	} else {
		s.location=FastApproxMedian(s.data, samples)
		s.scale   =FastApproxMAD(s.data, s.location, samples)
	}
	s.haveRobust=true
}


// Calculate mean and standard deviation of the given data
func MeanStdDev(xs []float32) (mean, stdDev float32) {
	xmean:=float32(0)
	for _,x:=range(xs) { xmean+=x }
	xmean/=float32(len(xs))
	xvar:=float32(0)
	for _,x:=range(xs) { diff:=x-xmean; xvar+=diff*diff }
	xvar/=float32(len(xs))
	xstddev:=float32(math.Sqrt(float64(xvar)))
	return xmean, xstddev
}

// Calculate minimum, mean and maximum of given data
func calcMinMeanMax(data []float32) (min, mean, max float32) {
	if len(data)==0 { return 0,0,0 }
	mmin, mmean, mmax:=data[0], float64(0), data[0]
	for _,v := range data {
		if v<mmin {
			mmin=v
		}
		if v>mmax {
			mmax=v
		}
		mmean+=float64(v)
	}
	return mmin, float32(mmean/float64(len(data))), mmax
}

// Calculate variance of given data from provided mean
func calcVariance(data []float32, mean float32) (result float64) {
	if len(data)==0 { return 0 }
	variance:=float64(0)
	for _,v :=range data {
		diff:=float64(v-mean)
		variance+=diff*diff
	}
	return variance/float64(len(data))
}


// Calculates fast approximate median of the (presumably large) data by randomly
// subsampling values and taking the median of that.
// Uses provided samples array as scratchpad
func FastApproxMedian(data []float32, samples []float32) float32 {
	max:=uint32(len(data))
	rng:=fastrand.RNG{}
	for i:=range samples {
		index:=rng.Uint32n(max)
		samples[i]=data[index]
	}
	median:=qsort.QSelectMedianFloat32(samples)
	return median
}

// Calculates fast approximate median of absolute differences of the (presumably
// large) data by randomly subsampling values and taking the MAD of that.
// Uses provided samples array as scratchpad
func FastApproxMAD(data []float32, location float32, samples []float32) float32 {
	max:=uint32(len(data))
	rng:=fastrand.RNG{}
	for i:=range samples {
		index:=rng.Uint32n(max)
		samples[i]=float32(math.Abs(float64(data[index]-location)))
	}
	mad:=qsort.QSelectMedianFloat32(samples)*1.4826  // normalize to Gaussian std dev.
	return mad
}

// Calculates fast approximate Qn scale estimate of the (presumably large) data
// by subsampling pairs and taking the first quartile of their distances.
// Original paper http://web.ipac.caltech.edu/staff/fmasci/home/astro_refs/BetterThanMAD.pdf
// Uses provided samples array as scratchpad
func FastApproxQn(data []float32, samples []float32) float32 {
	max:=uint32(len(data))
	rng:=fastrand.RNG{}
	for i:=range samples {
		index1:=1+rng.Uint32n(max-1)
		index2:=rng.Uint32n(index1)
		samples[i]=float32(math.Abs(float64(data[index1]-data[index2])))
	}
	qn:=qsort.QSelectFirstQuartileFloat32(samples)*2.21914  // normalize to Gaussian std dev, for numSamples >>1000
	return qn
}

func minInt(a, b int) int {
	if a<b { return a }
	return b
}
