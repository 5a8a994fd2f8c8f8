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
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/mlnoga/sunstretch/internal/fits"
	"github.com/mlnoga/sunstretch/internal/stats"
)

// Quicklook rendering settings
type Options struct {
	MaxDim    int32   `json:"maxDim"`    // longest axis limit in pixels, 0 keeps full resolution
	Color     bool    `json:"color"`     // render with the EUV false color palette instead of grayscale
	Gamma     float32 `json:"gamma"`     // display gamma, 1 leaves values untouched
	Quality   int     `json:"quality"`   // JPEG quality in [1,100]
	Label     string  `json:"label"`     // caption drawn into the lower left corner, empty for none
	Crosshair bool    `json:"crosshair"` // mark the image center from the header
}

// Returns quicklook settings with default values
func NewOptions() Options {
	return Options{MaxDim: 0, Color: false, Gamma: 1, Quality: 95}
}

// Downscales the image so its longest axis fits maxDim pixels, preserving the
// aspect ratio. Resampling is Catmull-Rom over a 16-bit grayscale
// intermediate. Returns the image itself when it already fits. ID, file name,
// exposure and the header center carry over to the scaled result.
func Resize(f *fits.Image, maxDim int32) *fits.Image {
	if maxDim <= 0 || len(f.Naxisn) != 2 {
		return f
	}
	width, height := f.Naxisn[0], f.Naxisn[1]
	if width <= maxDim && height <= maxDim {
		return f
	}

	var dstW, dstH int32
	if width >= height {
		dstW = maxDim
		dstH = int32(math.Round(float64(height) * float64(maxDim) / float64(width)))
	} else {
		dstH = maxDim
		dstW = int32(math.Round(float64(width) * float64(maxDim) / float64(height)))
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	min, max := f.Stats.Min(), f.Stats.Max()
	res := fits.NewImageFromNaxisn([]int32{dstW, dstH}, nil)
	res.ID, res.FileName, res.Exposure = f.ID, f.FileName, f.Exposure

	if !(max > min) {
		// constant image, resampling would divide by zero
		for i := range res.Data {
			res.Data[i] = min
		}
	} else {
		src := f.MonoGray16(min, max, 1)
		dst := image.NewGray16(image.Rect(0, 0, int(dstW), int(dstH)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

		scale := (max - min) / 65535.0
		for y := 0; y < int(dstH); y++ {
			yoffset := y * int(dstW)
			for x := 0; x < int(dstW); x++ {
				res.Data[yoffset+x] = min + float32(dst.Gray16At(x, y).Y)*scale
			}
		}
	}

	if cx, cy, err := f.Center(); err == nil {
		sx := float32(dstW) / float32(width)
		sy := float32(dstH) / float32(height)
		res.SetCenter((cx+0.5)*sx-0.5, (cy+0.5)*sy-0.5)
	}
	return res
}

// Display scaling bounds for a quicklook. Equalized output already occupies
// [0,1] and passes through unscaled. Anything else is autoscaled: the black
// point moves up to two sigmas below the histogram mode, estimated with a
// normal distribution fit, which clips most of the background noise floor.
func DisplayRange(f *fits.Image) (min, max float32) {
	min, max = f.Stats.Min(), f.Stats.Max()
	if min >= 0 && max <= 1 {
		return 0, 1
	}
	if !(max > min) {
		return min, min + 1
	}

	bins := make([]int32, 4096)
	stats.Histogram(f.Data, min, max, bins)
	mode, sigma, err := stats.GetModeStdDevFromHistogram(bins, min, max)
	if err != nil {
		return min, max
	}
	if sigma < 0 {
		sigma = -sigma
	}
	black := mode - 2*sigma
	if black <= min || black >= max {
		return min, max
	}

	// reject fits which would clip the majority of all pixels
	index := int((black - min) / (max - min) * float32(len(bins)-1))
	clipped := int32(0)
	for i := 0; i < index && i < len(bins); i++ {
		clipped += bins[i]
	}
	if int(clipped)*2 > len(f.Data) {
		return min, max
	}
	return black, max
}

// Maps grayscale FITS pixels through the palette into an RGBA image, scaling
// values from [min,max] and applying the given gamma
func falseColorRGBA(f *fits.Image, p Palette, min, max, gamma float32) *image.RGBA {
	width, height := int(f.Naxisn[0]), int(f.Naxisn[1])
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	lut := p.LUT()
	scale := 1.0 / (max - min)
	gammaInv := float64(1.0 / gamma)
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			v := f.Data[yoffset+x]
			v = (v - min) * scale
			// replace NaNs with zeros, else the table index breaks
			if math.IsNaN(float64(v)) || v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			if gammaInv != 1.0 {
				v = float32(math.Pow(float64(v), gammaInv))
			}
			img.SetRGBA(x, y, lut[int(v*255)])
		}
	}
	return img
}

// Draws the label into the lower left corner and, when requested, a crosshair
// marking the given center. White strokes over a black offset shadow keep the
// overlay readable on any background.
func Annotate(img image.Image, label string, centerX, centerY float32, crosshair bool) image.Image {
	dc := gg.NewContextForImage(img)
	if crosshair {
		// half-pixel offsets align the strokes with pixel centers
		cx, cy := float64(centerX)+0.5, float64(centerY)+0.5
		drawCrosshair(dc, cx+1, cy+1, 0, 0, 0)
		drawCrosshair(dc, cx, cy, 1, 1, 1)
	}
	if label != "" {
		h := float64(dc.Height())
		dc.SetRGB(0, 0, 0)
		dc.DrawString(label, 11, h-9)
		dc.SetRGB(1, 1, 1)
		dc.DrawString(label, 10, h-10)
	}
	return dc.Image()
}

func drawCrosshair(dc *gg.Context, cx, cy, r, g, b float64) {
	const arm, gap = 12.0, 4.0
	dc.SetRGB(r, g, b)
	dc.SetLineWidth(1)
	dc.DrawLine(cx-arm, cy, cx-gap, cy)
	dc.DrawLine(cx+gap, cy, cx+arm, cy)
	dc.DrawLine(cx, cy-arm, cx, cy-gap)
	dc.DrawLine(cx, cy+gap, cx, cy+arm)
	dc.Stroke()
}

// Renders a quicklook of the image and encodes it in the given format, one of
// "jpg", "jpeg" or "png". Plain grayscale goes straight to the 8-bit
// encoders; false color maps values through the EUV palette.
func Quicklook(f *fits.Image, w io.Writer, format string, o Options) error {
	if len(f.Naxisn) != 2 {
		return fmt.Errorf("%d: need a 2D image for quicklook, have dimensions %s", f.ID, f.DimensionsToString())
	}
	f = Resize(f, o.MaxDim)
	min, max := DisplayRange(f)

	gamma := o.Gamma
	if gamma == 0 {
		gamma = 1
	}

	crosshair := o.Crosshair
	cx, cy := float32(0), float32(0)
	if crosshair {
		var err error
		cx, cy, err = f.Center()
		if err != nil {
			crosshair = false
		}
	}

	plain := !o.Color && o.Label == "" && !crosshair
	switch format {
	case "jpg", "jpeg":
		if plain {
			return f.WriteMonoJPG(w, min, max, gamma, o.Quality)
		}
	case "png":
		if plain {
			return f.WriteMonoPNG(w, min, max, gamma)
		}
	default:
		return fmt.Errorf("%d: unknown quicklook format %q", f.ID, format)
	}

	var img image.Image
	if o.Color {
		img = falseColorRGBA(f, EUV, min, max, gamma)
	} else {
		img = f.MonoGray(min, max, gamma)
	}
	if o.Label != "" || crosshair {
		img = Annotate(img, o.Label, cx, cy, crosshair)
	}
	if format == "png" {
		return png.Encode(w, img)
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: o.Quality})
}

// Renders a quicklook to the named file, with the format chosen by the
// file extension
func QuicklookToFile(f *fits.Image, fileName string, o Options) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return Quicklook(f, writer, format, o)
}
