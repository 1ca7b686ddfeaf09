// FILE: example/gnet/main.go
package main

import (
	"github.com/lixenwraith/tlog"
	"github.com/lixenwraith/tlog/compat"
	"github.com/panjf2000/gnet/v2"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	h, err := tlog.NewBuilder().
		Path("/var/log/gnet/server.log").
		MaxSizeKB(10240).
		MaxBackups(3).
		Flock(true).
		Open()
	if err != nil {
		panic(err)
	}
	defer tlog.Close(h)

	// gnet repeats accept and read errors under load, one per second is enough
	gnetAdapter, err := compat.NewBuilder().
		WithHandle(h).
		BuildGnet(compat.WithGnetLevel(tlog.LevelDebug), compat.WithGnetThrottle(1))
	if err != nil {
		panic(err)
	}

	// Configure gnet server with the logger
	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
