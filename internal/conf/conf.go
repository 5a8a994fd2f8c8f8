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

package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/mlnoga/sunstretch/internal/render"
	"github.com/mlnoga/sunstretch/internal/rhef"
)

// Config holds the file-configurable settings: filter parameters, quicklook
// rendering and the server port. Command line flags override these per run.
type Config struct {
	YLow    float32 `yaml:"yl"`      // shadow gamma exponent of the tone curve
	YHigh   float32 `yaml:"yh"`      // highlight gamma exponent of the tone curve
	Binsize float32 `yaml:"binsize"` // width of the radial annuli in pixels

	MaxDim   int32 `yaml:"maxDim"`   // downscale quicklooks to fit this dimension, 0=off
	Color    bool  `yaml:"color"`    // render quicklooks with the false color palette
	Quality  int   `yaml:"quality"`  // JPEG quality for quicklooks
	Annotate bool  `yaml:"annotate"` // draw label and center crosshair on quicklooks

	Port    int `yaml:"port"`    // HTTP port for the serve command
	Threads int `yaml:"threads"` // image processing concurrency, 0=all CPUs
}

// New returns the built-in default configuration
func New() Config {
	return Config{
		YLow:    rhef.DefaultYLow,
		YHigh:   rhef.DefaultYHigh,
		Binsize: 1,
		MaxDim:  0,
		Color:   false,
		Quality: 95,
		Port:    8080,
		Threads: 0,
	}
}

// FromFile reads a YAML config file over the built-in defaults. Unknown keys
// are rejected to catch typos
func FromFile(fileName string) (Config, error) {
	c := New()
	b, err := os.ReadFile(fileName)
	if err != nil {
		return c, err
	}
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return c, fmt.Errorf("%s: %s", fileName, err.Error())
	}
	return c, nil
}

// Params returns the filter parameters selected by the config
func (c *Config) Params() rhef.Params {
	p := rhef.NewParams()
	p.YLow, p.YHigh, p.Binsize = c.YLow, c.YHigh, c.Binsize
	return p
}

// Quicklook returns the renderer options selected by the config
func (c *Config) Quicklook() render.Options {
	o := render.NewOptions()
	o.MaxDim, o.Color, o.Quality, o.Crosshair = c.MaxDim, c.Color, c.Quality, c.Annotate
	return o
}
