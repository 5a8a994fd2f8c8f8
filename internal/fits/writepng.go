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
	"image/png"
	"io"
	"os"
)

// Write a grayscale FITS image to PNG, using the given min, max and gamma.
func (f *Image) WriteMonoPNGToFile(fileName string, min, max, gamma float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return f.WriteMonoPNG(writer, min, max, gamma)
}

// Write a grayscale FITS image to PNG, using the given min, max and gamma.
func (f *Image) WriteMonoPNG(writer io.Writer, min, max, gamma float32) error {
	return png.Encode(writer, f.MonoGray(min, max, gamma))
}
