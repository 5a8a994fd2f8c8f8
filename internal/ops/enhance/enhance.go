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


package enhance

import (
	"encoding/json"
	"fmt"
	"github.com/mlnoga/sunstretch/internal/fits"
	"github.com/mlnoga/sunstretch/internal/ops"
	"github.com/mlnoga/sunstretch/internal/rhef"
)

// NewOpRHEF assembles the radial histogram equalizing filter as an operator
// sequence: annulus equalization followed by the two-segment tone curve
func NewOpRHEF(binsize, yl, yh float32) *ops.OpSequence {
	return ops.NewOpSequence(
		NewOpRadialEq(binsize, -1, -1),
		NewOpToneCurve(yl, yh),
	)
}

// Rank-equalizes each radial annulus around the disk center into [0,1].
// Takes one input, produces one output
type OpRadialEq struct {
	ops.OpUnaryBase
	Binsize  float32  `json:"binsize"`
	CenterX  float32  `json:"centerX"`  // 0-based disk center override, <0 uses the image header
	CenterY  float32  `json:"centerY"`
}

var _ ops.Operator = (*OpRadialEq)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpRadialEqDefault() })} // register the operator for JSON decoding

func NewOpRadialEqDefault() *OpRadialEq { return NewOpRadialEq(1, -1, -1) }

func NewOpRadialEq(binsize, centerX, centerY float32) *OpRadialEq {
	op:=OpRadialEq{
	  	OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "radialEq", Active: true}},
		Binsize     : binsize,
		CenterX     : centerX,
		CenterY     : centerY,
  	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpRadialEq) UnmarshalJSON(data []byte) error {
	type defaults OpRadialEq
	def:=defaults( *NewOpRadialEqDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpRadialEq(def)
	op.OpUnaryBase.Apply=op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpRadialEq) Apply(f *fits.Image, c *ops.Context) (result *fits.Image, err error) {
	if !op.Active { return f, nil }
	p:=rhef.NewParams()
	p.Binsize, p.CenterX, p.CenterY=op.Binsize, op.CenterX, op.CenterY
	centerX, centerY, err:=rhef.Validate(f, p)
	if err!=nil { return nil, err }

	radii:=rhef.RadiusMap(f.Naxisn[0], f.Naxisn[1], centerX, centerY)
	bins :=rhef.BinRadially(radii, p.Binsize)
	out, singletons:=rhef.EqualizeAnnuli(f.Data, bins, c.MaxThreads)
	if singletons>0 {
		fmt.Fprintf(c.Log, "%d: %d singleton annuli, equalized to %g\n", f.ID, singletons, rhef.SingletonValue)
	}
	fmt.Fprintf(c.Log, "%d: Equalized %d annuli of width %.4g around center (%.1f,%.1f)\n",
		        f.ID, bins.NumBins(), op.Binsize, centerX, centerY)

	res:=fits.NewImageFromNaxisn(f.Naxisn, out)
	res.ID, res.FileName, res.Header, res.Exposure=f.ID, f.FileName, f.Header, f.Exposure
	return res, nil
}


// Applies the asymmetric two-segment gamma tone curve to all pixels, clamping
// stray values into [0,1]. Takes one input, produces one output
type OpToneCurve struct {
	ops.OpUnaryBase
	YLow   float32  `json:"yl"`
	YHigh  float32  `json:"yh"`
}

var _ ops.Operator = (*OpToneCurve)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpToneCurveDefault() })} // register the operator for JSON decoding

func NewOpToneCurveDefault() *OpToneCurve { return NewOpToneCurve(rhef.DefaultYLow, rhef.DefaultYHigh) }

func NewOpToneCurve(yl, yh float32) *OpToneCurve {
	op:=OpToneCurve{
	  	OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "toneCurve", Active: true}},
		YLow        : yl,
		YHigh       : yh,
  	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpToneCurve) UnmarshalJSON(data []byte) error {
	type defaults OpToneCurve
	def:=defaults( *NewOpToneCurveDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpToneCurve(def)
	op.OpUnaryBase.Apply=op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpToneCurve) Apply(f *fits.Image, c *ops.Context) (result *fits.Image, err error) {
	if !op.Active { return f, nil }
	p:=rhef.NewParams()
	p.YLow, p.YHigh=op.YLow, op.YHigh
	if err:=p.Valid(); err!=nil { return nil, fmt.Errorf("%d: %s", f.ID, err.Error()) }

	fmt.Fprintf(c.Log, "%d: Applying tone curve with shadow gamma %.4g and highlight gamma %.4g\n", f.ID, op.YLow, op.YHigh)
	if clamped:=rhef.ApplyToneCurve(f.Data, op.YLow, op.YHigh, c.MaxThreads); clamped>0 {
		fmt.Fprintf(c.Log, "%d: Warning: clamped %d values into [0,1]\n", f.ID, clamped)
	}
	if f.Stats!=nil { f.Stats.Clear() }
	return f, nil
}
