// FILE: example/fasthttp/main.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/tlog"
	"github.com/lixenwraith/tlog/compat"
	"github.com/valyala/fasthttp"
)

func main() {
	cfg := tlog.DefaultConfig()
	if err := cfg.ApplyOverride(
		"kind=file",
		"path=/var/log/fasthttp/server.log",
		"max_size_kb=4096",
		"max_backups=2",
		"sanitize=txt",
		"buffer_size=2048",
	); err != nil {
		panic(err)
	}

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter, err := compat.NewBuilder().
		WithConfig(cfg).
		BuildFastHTTP(
			compat.WithDefaultLevel(tlog.LevelInfo),
			compat.WithLevelDetector(customLevelDetector),
			compat.WithFastHTTPThrottle(0.5),
		)
	if err != nil {
		panic(err)
	}

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Start server
	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) tlog.Level {
	// Can inspect specific fasthttp message patterns
	if strings.Contains(msg, "connection cannot be served") {
		return tlog.LevelWarning
	}
	if strings.Contains(msg, "error when serving connection") {
		return tlog.LevelError
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
