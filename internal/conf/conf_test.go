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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlnoga/sunstretch/internal/rhef"
)

func TestNew(t *testing.T) {
	c := New()
	if c.YLow != rhef.DefaultYLow || c.YHigh != rhef.DefaultYHigh {
		t.Errorf("default gammas %g/%g, expected %g/%g", c.YLow, c.YHigh, rhef.DefaultYLow, rhef.DefaultYHigh)
	}
	if c.Binsize != 1 {
		t.Errorf("default binsize %g, expected 1", c.Binsize)
	}
	if c.Quality != 95 {
		t.Errorf("default quality %d, expected 95", c.Quality)
	}
	if c.Port != 8080 {
		t.Errorf("default port %d, expected 8080", c.Port)
	}
}

func TestFromFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "sunstretch.yaml")
	yml := "yl: 0.6\nbinsize: 2\nport: 9000\ncolor: true\n"
	if err := os.WriteFile(fileName, []byte(yml), 0666); err != nil {
		t.Fatalf("writing config: %s", err.Error())
	}

	c, err := FromFile(fileName)
	if err != nil {
		t.Fatalf("reading config: %s", err.Error())
	}
	if c.YLow != 0.6 || c.Binsize != 2 || c.Port != 9000 || !c.Color {
		t.Errorf("config %+v did not pick up file values", c)
	}
	if c.YHigh != rhef.DefaultYHigh || c.Quality != 95 {
		t.Errorf("config %+v did not keep defaults for absent keys", c)
	}
}

func TestFromFileUnknownKey(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "sunstretch.yaml")
	if err := os.WriteFile(fileName, []byte("gamma: 0.5\n"), 0666); err != nil {
		t.Fatalf("writing config: %s", err.Error())
	}
	if _, err := FromFile(fileName); err == nil {
		t.Errorf("expected unknown key to be rejected")
	} else if !strings.Contains(err.Error(), "gamma") {
		t.Errorf("error %s does not name the unknown key", err.Error())
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected missing file to error")
	}
}

func TestParamsAndQuicklook(t *testing.T) {
	c := New()
	c.YLow, c.YHigh, c.Binsize = 0.8, 0.5, 3
	c.MaxDim, c.Color, c.Quality, c.Annotate = 1024, true, 80, true

	p := c.Params()
	if p.YLow != 0.8 || p.YHigh != 0.5 || p.Binsize != 3 {
		t.Errorf("params %+v do not match config", p)
	}
	if p.CenterX != -1 || p.CenterY != -1 {
		t.Errorf("params %+v must keep the center unset", p)
	}
	if err := p.Valid(); err != nil {
		t.Errorf("params from valid config must be valid: %s", err.Error())
	}

	o := c.Quicklook()
	if o.MaxDim != 1024 || !o.Color || o.Quality != 80 || !o.Crosshair {
		t.Errorf("options %+v do not match config", o)
	}
	if o.Gamma != 1 {
		t.Errorf("options %+v must keep default gamma 1", o)
	}
}
