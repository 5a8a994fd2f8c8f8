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
	"fmt"
	"io"
	"net/http"
	"github.com/gin-gonic/gin"

	"github.com/mlnoga/sunstretch/internal/fits"
	"github.com/mlnoga/sunstretch/internal/ops"
	"github.com/mlnoga/sunstretch/internal/render"
	"github.com/mlnoga/sunstretch/internal/rhef"
	"github.com/mlnoga/sunstretch/web"
)


// NewRouter wires up the REST API and the web UI
func NewRouter() *gin.Engine {
	r := gin.Default()
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",  getPing)
			v1.POST("/stats", postStats)
			v1.POST("/rhef",  postRHEF)
		}
	}
	return r
}

// Serve runs the REST API and the web UI on the given port
func Serve(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

func getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m,err:=json.MarshalIndent(args, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

// Streams log output to the HTTP client by flushing after every write
type flushWriter struct {
	w gin.ResponseWriter
}

func (fw *flushWriter) Write(p []byte) (n int, err error) {
	n, err=fw.w.Write(p)
	fw.w.Flush()
	return n, err
}

type postStatsArgs struct {
	FilePatterns []string `json:"filePatterns"`
}

type statsResult struct {
	ID         int     `json:"id"`
	FileName   string  `json:"fileName"`
	Dimensions string  `json:"dimensions"`
	Min        float32 `json:"min"`
	Max        float32 `json:"max"`
	Mean       float32 `json:"mean"`
	StdDev     float32 `json:"stdDev"`
	Location   float32 `json:"location"`
	Scale      float32 `json:"scale"`
}

func postStats(c *gin.Context)  {
	var args postStatsArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}

	octx:=ops.NewContext(io.Discard, 0)
	promises, err:=ops.NewOpLoadMany(args.FilePatterns).MakePromises(nil, octx)
	if err!=nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error() } )
		return
	}
	images, err:=ops.MaterializeAll(promises, octx.MaxThreads, false)
	if err!=nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error() } )
		return
	}

	results:=make([]statsResult, len(images))
	for i, f:=range images {
		results[i]=statsResult{
			ID:         f.ID,
			FileName:   f.FileName,
			Dimensions: f.DimensionsToString(),
			Min:        f.Stats.Min(),
			Max:        f.Stats.Max(),
			Mean:       f.Stats.Mean(),
			StdDev:     f.Stats.StdDev(),
			Location:   f.Stats.Location(),
			Scale:      f.Stats.Scale(),
		}
	}
	c.JSON(http.StatusOK, results)
}


type postRHEFArgs struct {
	FilePatterns []string        `json:"filePatterns"`
	Params       rhef.Params     `json:"params"`
	Out          string          `json:"out"`
	Quicklook    render.Options  `json:"quicklook"`
}

func postRHEF(c *gin.Context) {
	args:=postRHEFArgs{Params: rhef.NewParams(), Quicklook: render.NewOptions()}
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}
	if err:=args.Params.Valid(); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/plain")
	c.Writer.WriteHeader(http.StatusOK)
	logWriter:=&flushWriter{w: c.Writer}

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	octx:=ops.NewContext(logWriter, 0)
	promises, err:=ops.NewOpLoadMany(args.FilePatterns).MakePromises(nil, octx)
	if err!=nil {
		fmt.Fprintf(logWriter, "Error globbing filenames: %s\n", err.Error())
		return
	}

	opSave:=ops.NewOpSave(args.Out, args.Quicklook)
	outs:=make([]ops.Promise, len(promises))
	for i, in:=range promises {
		theIn:=in
		outs[i]=func() (*fits.Image, error) {
			f, err:=theIn()
			if err!=nil { return nil, err }
			res, elapsed, err:=rhef.Run(f, args.Params, octx.MaxThreads, logWriter)
			if err!=nil { return nil, err }
			fmt.Fprintf(logWriter, "%d: Equalized %s image in %v\n", res.ID, res.DimensionsToString(), elapsed)
			return opSave.Apply(res, octx)
		}
	}
	if _, err:=ops.MaterializeAll(outs, octx.MaxThreads, true); err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	}
}
