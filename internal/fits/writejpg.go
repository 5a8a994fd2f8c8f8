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
	"bufio"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"os"
)

// Convert grayscale FITS pixels into an 8-bit grayscale image, mapping values
// from [min,max] to [0,255] and applying the given gamma.
func (f *Image) MonoGray(min, max, gamma float32) *image.Gray {
	width, height := int(f.Naxisn[0]), int(f.Naxisn[1])
	img := image.NewGray(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})
	scale := 1.0 / (max - min)
	gammaInv := float64(1.0 / gamma)
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			gray := f.Data[yoffset+x]
			gray = (gray - min) * scale
			// replace NaNs with zeros for export, else encoder output breaks
			if math.IsNaN(float64(gray)) || gray < 0 {
				gray = 0
			}
			if gray > 1 {
				gray = 1
			}
			if gammaInv != 1.0 {
				gray = float32(math.Pow(float64(gray), gammaInv))
			}
			img.SetGray(x, y, color.Gray{uint8(gray * 255)})
		}
	}
	return img
}

// Write a grayscale FITS image to JPG, using the given min, max and gamma.
func (f *Image) WriteMonoJPGToFile(fileName string, min, max, gamma float32, quality int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return f.WriteMonoJPG(writer, min, max, gamma, quality)
}

// Write a grayscale FITS image to JPG, using the given min, max and gamma.
func (f *Image) WriteMonoJPG(writer io.Writer, min, max, gamma float32, quality int) error {
	return jpeg.Encode(writer, f.MonoGray(min, max, gamma), &jpeg.Options{Quality: quality})
}
