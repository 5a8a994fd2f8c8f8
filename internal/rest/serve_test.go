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


package rest

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"github.com/gin-gonic/gin"
	"github.com/mlnoga/sunstretch/internal/fits"
)

func postJSON(t *testing.T, router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req:=httptest.NewRequest("POST", url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w:=httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func writeTestImage(t *testing.T, fileName string) {
	t.Helper()
	data:=make([]float32, 16)
	for i:=range data { data[i]=float32(i)/15 }
	img:=fits.NewImageFromNaxisn([]int32{4,4}, data)
	img.SetCenter(1.5, 1.5)
	if err:=img.WriteFile(fileName); err!=nil { t.Fatalf("write %s: %s", fileName, err.Error()) }
}

func TestPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router:=NewRouter()
	req:=httptest.NewRequest("GET", "/api/v1/ping", nil)
	w:=httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code!=200 { t.Fatalf("status=%d; want 200", w.Code) }
	if !strings.Contains(w.Body.String(), "pong") { t.Errorf("body=%s; want pong", w.Body.String()) }
}

func TestIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router:=NewRouter()
	req:=httptest.NewRequest("GET", "/", nil)
	w:=httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code!=200 { t.Fatalf("status=%d; want 200", w.Code) }
	if !strings.Contains(w.Body.String(), "<html") { t.Errorf("index page missing html") }
}

func TestPostStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	oldWD, err:=os.Getwd()
	if err!=nil { t.Fatalf("getwd: %s", err.Error()) }
	if err:=os.Chdir(t.TempDir()); err!=nil { t.Fatalf("chdir: %s", err.Error()) }
	defer os.Chdir(oldWD)
	writeTestImage(t, "a.fits")

	w:=postJSON(t, NewRouter(), "/api/v1/stats", `{"filePatterns":["*.fits"]}`)
	if w.Code!=200 { t.Fatalf("status=%d; want 200, body %s", w.Code, w.Body.String()) }

	var results []statsResult
	if err:=json.Unmarshal(w.Body.Bytes(), &results); err!=nil { t.Fatalf("unmarshal: %s", err.Error()) }
	if len(results)!=1 { t.Fatalf("len(results)=%d; want 1", len(results)) }
	if results[0].FileName!="a.fits" { t.Errorf("fileName=%s; want a.fits", results[0].FileName) }
	if results[0].Dimensions!="4x4" { t.Errorf("dimensions=%s; want 4x4", results[0].Dimensions) }
	if results[0].Min!=0 || results[0].Max!=1 { t.Errorf("min=%f max=%f; want 0 and 1", results[0].Min, results[0].Max) }
}

func TestPostStatsBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w:=postJSON(t, NewRouter(), "/api/v1/stats", `{"filePatterns":`)
	if w.Code!=400 { t.Errorf("status=%d; want 400", w.Code) }
}

func TestPostRHEF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	oldWD, err:=os.Getwd()
	if err!=nil { t.Fatalf("getwd: %s", err.Error()) }
	if err:=os.Chdir(t.TempDir()); err!=nil { t.Fatalf("chdir: %s", err.Error()) }
	defer os.Chdir(oldWD)
	writeTestImage(t, "a.fits")

	w:=postJSON(t, NewRouter(), "/api/v1/rhef", `{"filePatterns":["a.fits"], "out":"rhef%d.fits"}`)
	if w.Code!=200 { t.Fatalf("status=%d; want 200, body %s", w.Code, w.Body.String()) }
	if !strings.Contains(w.Body.String(), "Equalized") { t.Errorf("body=%s; want equalization log", w.Body.String()) }
	if _, err:=os.Stat("rhef0.fits"); err!=nil { t.Errorf("output missing: %s", err.Error()) }

	res, err:=fits.NewImageFromFile("rhef0.fits", 0, io.Discard)
	if err!=nil { t.Fatalf("read output: %s", err.Error()) }
	for i, d:=range res.Data {
		if d<0 || d>1 { t.Errorf("data[%d]=%f outside [0,1]", i, d) }
	}
}

func TestPostRHEFBadParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w:=postJSON(t, NewRouter(), "/api/v1/rhef", `{"filePatterns":["a.fits"], "params":{"yl":-1}}`)
	if w.Code!=400 { t.Errorf("status=%d; want 400", w.Code) }
}
