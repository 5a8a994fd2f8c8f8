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

package render

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/mlnoga/sunstretch/internal/fits"
)

// horizontal ramp from 0 to 1, repeated on every row
func rampImage(width, height int32) *fits.Image {
	data := make([]float32, int(width)*int(height))
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			data[y*int(width)+x] = float32(x) / float32(width-1)
		}
	}
	return fits.NewImageFromNaxisn([]int32{width, height}, data)
}

func TestResizeNoop(t *testing.T) {
	img := rampImage(4, 4)
	if res := Resize(img, 8); res != img {
		t.Errorf("expected the identical image back for maxDim 8")
	}
	if res := Resize(img, 0); res != img {
		t.Errorf("expected the identical image back for maxDim 0")
	}
}

func TestResizeConstant(t *testing.T) {
	data := make([]float32, 8*4)
	for i := range data {
		data[i] = 0.5
	}
	img := fits.NewImageFromNaxisn([]int32{8, 4}, data)
	img.ID, img.FileName, img.Exposure = 7, "sun.fits", 2.5
	img.SetCenter(3.5, 1.5)

	res := Resize(img, 4)
	if res == img {
		t.Fatalf("expected a new image")
	}
	if !fits.EqualInt32Slice(res.Naxisn, []int32{4, 2}) {
		t.Fatalf("dimensions %s; want 4x2", res.DimensionsToString())
	}
	if res.ID != 7 || res.FileName != "sun.fits" || res.Exposure != 2.5 {
		t.Errorf("metadata %d %q %f not carried over", res.ID, res.FileName, res.Exposure)
	}
	for i, d := range res.Data {
		if d != 0.5 {
			t.Errorf("data[%d]=%f; want 0.5", i, d)
		}
	}

	cx, cy, err := res.Center()
	if err != nil {
		t.Fatalf("center: %s", err.Error())
	}
	if math.Abs(float64(cx-1.5)) > 1e-6 || math.Abs(float64(cy-0.5)) > 1e-6 {
		t.Errorf("center=(%f,%f); want (1.5,0.5)", cx, cy)
	}
}

func TestResizeRamp(t *testing.T) {
	img := rampImage(16, 8)
	res := Resize(img, 8)
	if !fits.EqualInt32Slice(res.Naxisn, []int32{8, 4}) {
		t.Fatalf("dimensions %s; want 8x4", res.DimensionsToString())
	}

	sum := float32(0)
	for i, d := range res.Data {
		if d < 0 || d > 1 {
			t.Errorf("data[%d]=%f outside the source range", i, d)
		}
		sum += d
	}
	if mean := sum / float32(len(res.Data)); math.Abs(float64(mean-0.5)) > 0.05 {
		t.Errorf("mean=%f; want 0.5 +/-0.05", mean)
	}

	// each row still ascends left to right
	for y := 0; y < 4; y++ {
		for x := 1; x < 8; x++ {
			if res.Data[y*8+x] < res.Data[y*8+x-1]-1e-3 {
				t.Errorf("row %d descends at column %d", y, x)
			}
		}
	}
}

func TestDisplayRangeEqualized(t *testing.T) {
	img := fits.NewImageFromNaxisn([]int32{4, 1}, []float32{0, 0.25, 0.75, 1})
	min, max := DisplayRange(img)
	if min != 0 || max != 1 {
		t.Errorf("range=(%f,%f); want (0,1)", min, max)
	}
}

func TestDisplayRangeRaw(t *testing.T) {
	// background-dominated frame: 90% noise floor around 1000, 10% bright disk
	data := make([]float32, 4096)
	for i := range data {
		if i%10 == 9 {
			data[i] = 20000 + float32(i%100)*400
		} else {
			data[i] = 950 + float32(i%101)
		}
	}
	img := fits.NewImageFromNaxisn([]int32{64, 64}, data)

	min, max := DisplayRange(img)
	if max != img.Stats.Max() {
		t.Errorf("max=%f; want %f", max, img.Stats.Max())
	}
	if min < img.Stats.Min() || min > 1100 {
		t.Errorf("black point %f; want within [%f,1100]", min, img.Stats.Min())
	}
	if !(min < max) {
		t.Errorf("inverted range (%f,%f)", min, max)
	}
}

func TestQuicklookGrayscalePNG(t *testing.T) {
	img := fits.NewImageFromNaxisn([]int32{2, 2}, []float32{0, 0.25, 0.5, 1})
	buf := bytes.Buffer{}
	if err := Quicklook(img, &buf, "png", NewOptions()); err != nil {
		t.Fatalf("quicklook: %s", err.Error())
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %s", err.Error())
	}
	gray, ok := decoded.(*image.Gray)
	if !ok {
		t.Fatalf("decoded %T; want *image.Gray", decoded)
	}
	want := []uint8{0, 63, 127, 255}
	for i, w := range want {
		if got := gray.GrayAt(i%2, i/2).Y; got != w {
			t.Errorf("pixel %d=%d; want %d", i, got, w)
		}
	}
}

func TestQuicklookFalseColorPNG(t *testing.T) {
	img := fits.NewImageFromNaxisn([]int32{2, 2}, []float32{0, 0.25, 0.5, 1})
	opts := NewOptions()
	opts.Color = true
	buf := bytes.Buffer{}
	if err := Quicklook(img, &buf, "png", opts); err != nil {
		t.Fatalf("quicklook: %s", err.Error())
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %s", err.Error())
	}
	r, g, b, _ := decoded.At(0, 0).RGBA()
	if r>>8 > 5 || g>>8 > 5 || b>>8 > 5 {
		t.Errorf("zero pixel (%d,%d,%d); want near black", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = decoded.At(1, 1).RGBA()
	if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Errorf("peak pixel (%d,%d,%d); want near white", r>>8, g>>8, b>>8)
	}
	r, _, b, _ = decoded.At(0, 1).RGBA()
	if r <= b {
		t.Errorf("midtone not warm: r=%d b=%d", r>>8, b>>8)
	}
}

func TestQuicklookJPG(t *testing.T) {
	img := rampImage(16, 8)
	buf := bytes.Buffer{}
	if err := Quicklook(img, &buf, "jpg", NewOptions()); err != nil {
		t.Fatalf("quicklook: %s", err.Error())
	}
	cfg, err := jpeg.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %s", err.Error())
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("decoded %dx%d; want 16x8", cfg.Width, cfg.Height)
	}
}

func TestQuicklookUnknownFormat(t *testing.T) {
	img := rampImage(4, 4)
	buf := bytes.Buffer{}
	if err := Quicklook(img, &buf, "bmp", NewOptions()); err == nil {
		t.Errorf("expected an error for format bmp")
	}
}

func TestAnnotate(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	out := Annotate(img, "sun.fits yl=0.7 yh=0.4", 32, 32, true)
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 64 {
		t.Fatalf("bounds %v; want 64x64", out.Bounds())
	}

	// west crosshair arm
	r, _, _, _ := out.At(26, 32).RGBA()
	if r>>8 < 200 {
		t.Errorf("crosshair pixel value %d; want bright", r>>8)
	}
	// far corner untouched
	r, _, _, _ = out.At(2, 2).RGBA()
	if r>>8 > 50 {
		t.Errorf("background pixel value %d; want dark", r>>8)
	}
	// some label ink in the bottom band
	found := false
	for x := 8; x < 60 && !found; x++ {
		for y := 45; y < 60 && !found; y++ {
			if rr, _, _, _ := out.At(x, y).RGBA(); rr>>8 > 200 {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("no label pixels found in the caption band")
	}
}
