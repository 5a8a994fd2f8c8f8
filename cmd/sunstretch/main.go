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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	"github.com/mlnoga/sunstretch/internal/conf"
	"github.com/mlnoga/sunstretch/internal/fits"
	"github.com/mlnoga/sunstretch/internal/ops"
	"github.com/mlnoga/sunstretch/internal/ops/enhance"
	"github.com/mlnoga/sunstretch/internal/render"
	"github.com/mlnoga/sunstretch/internal/rest"
	"github.com/mlnoga/sunstretch/internal/rhef"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out = flag.String("out", "rhef%d.fits", "save filtered images to `file`, %d is replaced by the image id")
var jpg = flag.String("jpg", "%auto", "save quicklooks of the filtered images as JPEG to `file`, %d is replaced by the image id. `%auto` derives the pattern from -out")
var png = flag.String("png", "", "save quicklooks of the filtered images as PNG to `file`, %d is replaced by the image id")
var tiff = flag.String("tiff", "", "save 16-bit renderings of the filtered images as TIFF to `file`, %d is replaced by the image id")
var log = flag.String("log", "%auto", "save log output to `file` in addition to stdout. `%auto` derives the name from -out")

var config = flag.String("config", "", "load configuration from YAML `file`")
var center = flag.String("center", "", "override the image header disk center with 0-based `x,y` pixel coordinates")

var yl = flag.Float64("yl", float64(rhef.DefaultYLow), "shadow gamma exponent of the tone curve, applied below 0.5")
var yh = flag.Float64("yh", float64(rhef.DefaultYHigh), "highlight gamma exponent of the tone curve, applied above 0.5")
var binsize = flag.Float64("binsize", 1, "width of the radial annuli in pixels")

var color = flag.Bool("color", false, "render quicklooks with the EUV false color palette")
var size = flag.Int64("size", 0, "downscale quicklooks so the longest axis fits `pixels`, 0=full resolution")
var quality = flag.Int64("quality", 95, "JPEG quality for quicklooks")
var annotate = flag.Bool("annotate", false, "draw the filter parameters and a center crosshair on quicklooks")

var threads = flag.Int64("threads", 0, "number of images to process in parallel, 0=all CPUs")

var port = flag.Int64("port", 8080, "HTTP port for the serve command")
var chroot = flag.String("chroot", "", "serve: change filesystem root to `dir` before listening (requires root)")
var setuid = flag.Int64("setuid", -1, "serve: change user id to `uid` before listening, -1=keep")

func main() {
	var logWriter io.Writer = os.Stdout
	debug.SetGCPercent(10)
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `Sunstretch Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (rhef|stats|serve|legal|version|help) (img0.fits ... imgn.fits)

Commands:
  rhef    Equalize input images radially and apply the tone curve (default when files are given)
  stats   Show input image statistics
  serve   Serve the web interface and REST API
  legal   Show license and attribution information
  version Show version information
  help    Show this help message

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Layer the configuration: built-in defaults, then the config file,
	// then explicitly set command line flags
	cfg := conf.New()
	if *config != "" {
		var err error
		if cfg, err = conf.FromFile(*config); err != nil {
			logFatalf(logWriter, "Error reading config file: %s\n", err.Error())
		}
	}
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if !setFlags["yl"] {
		*yl = float64(cfg.YLow)
	}
	if !setFlags["yh"] {
		*yh = float64(cfg.YHigh)
	}
	if !setFlags["binsize"] {
		*binsize = float64(cfg.Binsize)
	}
	if !setFlags["size"] {
		*size = int64(cfg.MaxDim)
	}
	if !setFlags["color"] {
		*color = cfg.Color
	}
	if !setFlags["quality"] {
		*quality = int64(cfg.Quality)
	}
	if !setFlags["annotate"] {
		*annotate = cfg.Annotate
	}
	if !setFlags["port"] {
		*port = int64(cfg.Port)
	}
	if !setFlags["threads"] {
		*threads = int64(cfg.Threads)
	}

	// Initialize logging to file in addition to stdout, if selected.
	// %auto drops the extension and any trailing %d id placeholder from
	// the output pattern, so rhef%d.fits logs to rhef.log
	if *log == "%auto" {
		if *out != "" {
			*log = strings.TrimSuffix(strings.TrimSuffix(*out, filepath.Ext(*out)), "%d") + ".log"
		} else {
			*log = ""
		}
	}
	if *log != "" {
		var err error
		if logWriter, err = logAlsoToFile(*log); err != nil {
			logFatalf(logWriter, "Unable to open logfile '%s': %s\n", *log, err.Error())
		}
	}

	// Also auto-select the JPEG quicklook target
	if *jpg == "%auto" {
		if *out != "" {
			*jpg = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".jpg"
		} else {
			*jpg = ""
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logFatalf(logWriter, "Could not create CPU profile: %s\n", err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logFatalf(logWriter, "Could not start CPU profile: %s\n", err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	// a bare list of files runs the rhef command
	switch args[0] {
	case "rhef", "stats", "serve", "legal", "version", "help", "?":
	default:
		args = append([]string{"rhef"}, args...)
	}

	if args[0] == "rhef" || args[0] == "stats" || args[0] == "serve" {
		fmt.Fprintf(logWriter, "Sunstretch %s on %s with %d logical cores (AVX2 %v) and %d MiB RAM\n",
			version, cpuid.CPU.BrandName, cpuid.CPU.LogicalCores, cpuid.CPU.AVX2(), totalMiBs)
	}

	// run actions
	var err error
	switch args[0] {
	case "rhef":
		err = cmdRHEF(args[1:], logWriter)

	case "stats":
		octx := ops.NewContext(logWriter, int(*threads))
		var promises []ops.Promise
		promises, err = ops.NewOpLoadMany(args[1:]).MakePromises(nil, octx)
		if err != nil {
			break
		}
		_, err = ops.MaterializeAll(promises, octx.MaxThreads, true)

	case "serve":
		if err = rest.MakeSandbox(*chroot, int(*setuid), logWriter); err != nil {
			break
		}
		fmt.Fprintf(logWriter, "Serving on port %d...\n", *port)
		err = rest.Serve(int(*port))

	case "legal":
		fmt.Fprint(logWriter, legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()
	}

	now := time.Now()
	elapsed := now.Sub(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			logFatalf(logWriter, "Could not create memory profile: %s\n", err.Error())
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			logFatalf(logWriter, "Could not write allocation profile: %s\n", err.Error())
		}
	}

	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		logSync()
		os.Exit(-1)
	}
	logSync()
}

// Equalize the given files radially, apply the tone curve and save the
// results under the configured output patterns
func cmdRHEF(args []string, logWriter io.Writer) error {
	centerX, centerY, err := parseCenter(*center)
	if err != nil {
		return err
	}

	params := rhef.NewParams()
	params.YLow, params.YHigh, params.Binsize = float32(*yl), float32(*yh), float32(*binsize)
	params.CenterX, params.CenterY = centerX, centerY
	if err := params.Valid(); err != nil {
		return err
	}

	quicklook := render.NewOptions()
	quicklook.MaxDim, quicklook.Color, quicklook.Quality = int32(*size), *color, int(*quality)
	if *annotate {
		quicklook.Crosshair = true
		quicklook.Label = fmt.Sprintf("RHEF yl=%.3g yh=%.3g bin=%.3g", params.YLow, params.YHigh, params.Binsize)
	}

	opSeq := ops.NewOpSequence(
		enhance.NewOpRadialEq(params.Binsize, params.CenterX, params.CenterY),
		enhance.NewOpToneCurve(params.YLow, params.YHigh),
	)
	for _, pattern := range []string{*out, *jpg, *png, *tiff} {
		if pattern != "" {
			opSeq.Append(ops.NewOpSave(pattern, quicklook))
		}
	}

	octx := ops.NewContext(logWriter, int(*threads))
	promises, err := ops.NewOpLoadMany(args).MakePromises(nil, octx)
	if err != nil {
		return err
	}

	m, err := json.MarshalIndent(opSeq, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "\nEqualizing %d frames with these settings:\n%s\n", len(promises), string(m))

	outs, err := opSeq.MakePromises(promises, octx)
	if err != nil {
		return err
	}

	// time each file and remember the slowest one
	var mutex sync.Mutex
	var slowestElapsed time.Duration
	var slowestFileName string
	timed := make([]ops.Promise, len(outs))
	for i, p := range outs {
		p := p
		timed[i] = func() (*fits.Image, error) {
			started := time.Now()
			f, err := p()
			if err != nil {
				return nil, err
			}
			elapsed := time.Now().Sub(started)
			fmt.Fprintf(logWriter, "%d: Processed %s in %v\n", f.ID, f.FileName, elapsed)
			mutex.Lock()
			if elapsed > slowestElapsed {
				slowestElapsed, slowestFileName = elapsed, f.FileName
			}
			mutex.Unlock()
			return f, nil
		}
	}
	if _, err = ops.MaterializeAll(timed, octx.MaxThreads, true); err != nil {
		return err
	}
	if slowestFileName != "" {
		fmt.Fprintf(logWriter, "Slowest file was %s at %v\n", slowestFileName, slowestElapsed)
	}
	return nil
}

// Parses a 0-based "x,y" disk center override. Empty selects the image header
func parseCenter(s string) (x, y float32, err error) {
	if s == "" {
		return -1, -1, nil
	}
	if _, err = fmt.Sscanf(s, "%g,%g", &x, &y); err != nil {
		return -1, -1, fmt.Errorf("invalid center '%s', expected x,y: %s", s, err.Error())
	}
	return x, y, nil
}
