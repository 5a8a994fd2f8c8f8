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
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"sort"
	"strings"
)

// Keys written from the typed image fields, skipped when emitting remaining header entries
var reservedKeys=map[string]bool{
	"SIMPLE":true, "BITPIX":true, "NAXIS":true, "NAXIS1":true, "NAXIS2":true, "NAXIS3":true,
	"BZERO":true, "BSCALE":true, "EXPOSURE":true, "EXPTIME":true,
}

// Writes an in-memory FITS image to a file with given filename.
// Compresses with gzip if .gz or .gzip suffix is present.
// Creates/overwrites the file if necessary
func (fits *Image) WriteFile(fileName string) error {
	f, err:=os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err!=nil { return err }
	defer f.Close()

	var w io.Writer = f
	ext:=strings.ToLower(path.Ext(fileName))
	if ext==".gz" || ext==".gzip" {
		gz:=gzip.NewWriter(f)
		defer gz.Close()
		w=gz
	}
	return fits.Write(w)
}


// Writes an in-memory FITS image to an io.Writer as 32-bit floating point data,
// preserving the remaining named header entries.
func (fits *Image) Write(f io.Writer) error {
	// Build header in string buffer
	sb:=strings.Builder{}
	writeBool(&sb, "SIMPLE", true, "    FITS standard 4.0")
	writeInt32(&sb, "BITPIX", -32, "    32-bit floating point")
	writeInt32(&sb, "NAXIS",  int32(len(fits.Naxisn)), "[1] Number of axis")
	for i:=0; i<len(fits.Naxisn); i++ {
		writeInt32(&sb, fmt.Sprintf("NAXIS%d",i+1), fits.Naxisn[i], "[1] Axis size")
	}
	writeFloat32(&sb, "BZERO", fits.Bzero, "[1] Zero offset")
	if fits.Exposure!=0 {
		writeFloat32(&sb, "EXPOSURE", fits.Exposure, "[s] Exposure duration")
	}
	fits.Header.write(&sb)
	writeEnd(&sb)

	// Pad current header block with spaces if necessary
	bytesInHeaderBlock:=(sb.Len() % fitsBlockSize)
	if bytesInHeaderBlock>0 {
		for i:=bytesInHeaderBlock; i<fitsBlockSize; i++ {
			sb.WriteRune(' ')
		}
	}

	// Write header block(s)
	_, err:=f.Write([]byte(sb.String()))
	if err!=nil { return err }

	// Write payload data, replacing NaNs with zeros for compatibility
	return writeFloat32Array(f, fits.Data, true)
}


// Writes the remaining named header entries in deterministic order
func (h *Header) write(w io.Writer) {
	for _, key:=range sortedKeysBool(h.Bools) {
		writeBool(w, key, h.Bools[key], "")
	}
	for _, key:=range sortedKeysInt32(h.Ints) {
		writeInt32(w, key, h.Ints[key], "")
	}
	for _, key:=range sortedKeysFloat32(h.Floats) {
		writeFloat32(w, key, h.Floats[key], "")
	}
	for _, key:=range sortedKeysString(h.Strings) {
		writeString(w, key, h.Strings[key], "")
	}
	for _, key:=range sortedKeysString(h.Dates) {
		writeString(w, key, h.Dates[key], "")
	}
	for _, line:=range h.History {
		writeFreeForm(w, "HISTORY", line)
	}
	for _, line:=range h.Comments {
		writeFreeForm(w, "COMMENT", line)
	}
}

// Writes a FITS header history or comment line, truncated to the line size
func writeFreeForm(w io.Writer, key, line string) {
	if len(line)>HeaderLineSize-8 { line=line[:HeaderLineSize-8] }
	fmt.Fprintf(w, "%-7s %-72s", key, line)
}

func sortedKeysBool(m map[string]bool) []string {
	ks:=make([]string, 0, len(m))
	for k:=range m {
		if !reservedKeys[k] { ks=append(ks, k) }
	}
	sort.Strings(ks)
	return ks
}

func sortedKeysInt32(m map[string]int32) []string {
	ks:=make([]string, 0, len(m))
	for k:=range m {
		if !reservedKeys[k] { ks=append(ks, k) }
	}
	sort.Strings(ks)
	return ks
}

func sortedKeysFloat32(m map[string]float32) []string {
	ks:=make([]string, 0, len(m))
	for k:=range m {
		if !reservedKeys[k] { ks=append(ks, k) }
	}
	sort.Strings(ks)
	return ks
}

func sortedKeysString(m map[string]string) []string {
	ks:=make([]string, 0, len(m))
	for k:=range m {
		if !reservedKeys[k] { ks=append(ks, k) }
	}
	sort.Strings(ks)
	return ks
}


// Writes a FITS header boolean value
func writeBool(w io.Writer, key string, value bool, comment string) {
	if len(key)>8 { key=key[0:8] }
	if len(comment)>47 { comment=comment[0:47] }
	v:="F"
	if value { v="T" }
	fmt.Fprintf(w, "%-8s= %20s / %-47s", key, v, comment)
}


// Writes a FITS header int32 value
func writeInt32(w io.Writer, key string, value int32, comment string) {
	if len(key)>8 { key=key[0:8] }
	if len(comment)>47 { comment=comment[0:47] }
	fmt.Fprintf(w, "%-8s= %20d / %-47s", key, value, comment)
}


// Writes a FITS header float32 value
func writeFloat32(w io.Writer, key string, value float32, comment string) {
	if len(key)>8 { key=key[0:8] }
	if len(comment)>47 { comment=comment[0:47] }
	fmt.Fprintf(w, "%-8s= %20g / %-47s", key, value, comment)
}


// Writes a FITS header string value, with escaping and continuations if necessary.
func writeString(w io.Writer, key, value, comment string) {
	if len(key)>8 { key=key[0:8] }
	if len(comment)>47 { comment=comment[0:47] }

	// escape ' characters
	value=strings.Join(strings.Split(value, "'"), "''")

	if len(value)<=18 {
		fmt.Fprintf(w, "%-8s= '%s'%s / %-47s", key, value, strings.Repeat(" ", 18-len(value)), comment)
	} else {
		fmt.Fprintf(w, "%-8s= '%s&' / %-47s", key, value[0:17], comment)
		value=value[17:]
		for ; len(value)>66 ; {
			fmt.Fprintf(w, "CONTINUE  '%s&' ", value[0:66])
			value=value[66:]
		}
		fmt.Fprintf(w, "CONTINUE  '%s'%s", value, strings.Repeat(" ", 50+(18-len(value))))
	}
}


// Writes a FITS header end record
func writeEnd(w io.Writer) {
	fmt.Fprintf(w, "END%s", strings.Repeat(" ", 80-3))
}

// Writes FITS binary body data in network byte order, padded to a full block.
// Optionally replaces NaNs with zeros for compatibility with other software
func writeFloat32Array(w io.Writer, data []float32, replaceNaNs bool) error {
	buf:=make([]byte,bufLen)

	for block:=0; block<len(data); block+=(bufLen>>2) {
		size:=len(data)-block
		if size>(bufLen>>2) { size=(bufLen>>2) }

		for offset:=0; offset<size; offset++ {
			d:=data[block+offset]
			if replaceNaNs && math.IsNaN(float64(d)) { d=0 }
			val:=math.Float32bits(d)
			buf[(offset<<2)+0]=byte(val>>24)
			buf[(offset<<2)+1]=byte(val>>16)
			buf[(offset<<2)+2]=byte(val>> 8)
			buf[(offset<<2)+3]=byte(val    )
		}
		_, err:=w.Write(buf[:(size<<2)])
		if err!=nil { return err }
	}

	// pad the final data block to the FITS block size
	if pad:=(len(data)*4) % fitsBlockSize; pad>0 {
		zeros:=make([]byte, fitsBlockSize-pad)
		if _, err:=w.Write(zeros); err!=nil { return err }
	}
	return nil
}
