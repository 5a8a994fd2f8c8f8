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

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Log output goes to stdout, and optionally to a file as well.
// No prefixes, no forced newlines.

// The optional additional file to log into
var logFile *bufio.Writer
var logFileOS *os.File

// Mirrors all subsequent log output to the given file in addition to stdout,
// truncating it first. Returns the writer to log to
func logAlsoToFile(fileName string) (io.Writer, error) {
	if logFile != nil {
		if err := logFile.Flush(); err != nil {
			return nil, err
		}
		if err := logFileOS.Close(); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	logFileOS = f
	logFile = bufio.NewWriter(f)
	return io.MultiWriter(os.Stdout, logFile), nil
}

// Prints an error message and exits with a nonzero code, flushing the log
// file first so the message is not lost
func logFatalf(logWriter io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(logWriter, format, args...)
	logSync()
	os.Exit(1)
}

// Flushes buffered log output to the log file, if one is open
func logSync() {
	if logFile != nil {
		logFile.Flush()
	}
	if logFileOS != nil {
		logFileOS.Sync()
	}
}
