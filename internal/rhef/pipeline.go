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
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mlnoga/sunstretch/internal/fits"
)

// Params holds the tunable parameters of the filter
type Params struct {
	YLow    float32 `json:"yl"`      // gamma exponent for the shadow half of the tone curve
	YHigh   float32 `json:"yh"`      // gamma exponent for the highlight half of the tone curve
	Binsize float32 `json:"binsize"` // width of the radial annuli in pixels
	CenterX float32 `json:"centerX"` // 0-based disk center override, <0 uses the image header
	CenterY float32 `json:"centerY"` // 0-based disk center override, <0 uses the image header
}

// NewParams returns the default filter parameters
func NewParams() Params {
	return Params{YLow: DefaultYLow, YHigh: DefaultYHigh, Binsize: 1, CenterX: -1, CenterY: -1}
}

// Valid returns an error if any parameter is non-positive or non-finite
func (p *Params) Valid() error {
	if !(p.YLow>0) || math.IsInf(float64(p.YLow), 0) {
		return fmt.Errorf("invalid shadow gamma exponent %g, must be positive and finite", p.YLow)
	}
	if !(p.YHigh>0) || math.IsInf(float64(p.YHigh), 0) {
		return fmt.Errorf("invalid highlight gamma exponent %g, must be positive and finite", p.YHigh)
	}
	if !(p.Binsize>0) || math.IsInf(float64(p.Binsize), 0) {
		return fmt.Errorf("invalid annulus width %g, must be positive and finite", p.Binsize)
	}
	if math.IsNaN(float64(p.CenterX)) || math.IsInf(float64(p.CenterX), 0) ||
	   math.IsNaN(float64(p.CenterY)) || math.IsInf(float64(p.CenterY), 0) {
		return fmt.Errorf("invalid center override (%g,%g), must be finite", p.CenterX, p.CenterY)
	}
	return nil
}

// Validate checks the image and parameters before any pipeline stage runs,
// resolving the 0-based disk center from the params override or, failing
// that, the image header
func Validate(f *fits.Image, p Params) (centerX, centerY float32, err error) {
	if f==nil || len(f.Data)==0 {
		return 0, 0, fmt.Errorf("missing or empty input image")
	}
	if err:=p.Valid(); err!=nil {
		return 0, 0, fmt.Errorf("%d: %s", f.ID, err.Error())
	}
	if len(f.Naxisn)!=2 || f.Naxisn[0]<1 || f.Naxisn[1]<1 {
		return 0, 0, fmt.Errorf("%d: need a 2D image, have dimensions %s", f.ID, f.DimensionsToString())
	}
	if int(f.Naxisn[0])*int(f.Naxisn[1])!=len(f.Data) {
		return 0, 0, fmt.Errorf("%d: dimensions %s do not match %d data values", f.ID, f.DimensionsToString(), len(f.Data))
	}
	centerX, centerY=p.CenterX, p.CenterY
	if centerX<0 || centerY<0 {
		centerX, centerY, err=f.Center()
		if err!=nil { return 0, 0, err }
	}
	if nonFinite:=countNonFinite(f.Data); nonFinite>0 {
		return 0, 0, fmt.Errorf("%d: input contains %d non-finite values", f.ID, nonFinite)
	}
	return centerX, centerY, nil
}

// Run applies the radial histogram equalizing filter to the given image,
// returning a new output image with values in [0,1] and the elapsed wall
// clock time. The disk center comes from the image header unless the params
// override it. All parameters and preconditions are checked before any stage
// runs; on error there is no output, and the input image is never modified.
// Equalization and the tone curve run on up to maxThreads CPUs, or all
// available CPUs if maxThreads is zero. Diagnostics go to logWriter.
func Run(f *fits.Image, p Params, maxThreads int, logWriter io.Writer) (*fits.Image, time.Duration, error) {
	start:=time.Now()
	centerX, centerY, err:=Validate(f, p)
	if err!=nil { return nil, 0, err }

	radii:=RadiusMap(f.Naxisn[0], f.Naxisn[1], centerX, centerY)
	bins :=BinRadially(radii, p.Binsize)
	out, singletons:=EqualizeAnnuli(f.Data, bins, maxThreads)
	if singletons>0 {
		fmt.Fprintf(logWriter, "%d: %d singleton annuli, equalized to %g\n", f.ID, singletons, SingletonValue)
	}
	if clamped:=ApplyToneCurve(out, p.YLow, p.YHigh, maxThreads); clamped>0 {
		fmt.Fprintf(logWriter, "%d: Warning: clamped %d equalized values into [0,1]\n", f.ID, clamped)
	}

	res:=fits.NewImageFromNaxisn(f.Naxisn, out)
	res.ID, res.FileName, res.Header, res.Exposure=f.ID, f.FileName, f.Header, f.Exposure
	return res, time.Since(start), nil
}

// counts NaN and infinity values in the given data
func countNonFinite(data []float32) (count int) {
	for _, d:=range(data) {
		if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) { count++ }
	}
	return count
}
