package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/lixenwraith/tlog"
)

// The message table a service would register at startup
var messages = []struct {
	name     string
	level    tlog.Level
	throttle float64
}{
	{"main", tlog.LevelInfo, 0},
	{"net.rx", tlog.LevelWarning, 1},
	{"net.tx", tlog.LevelWarning, 1},
	{"disk", tlog.LevelNotice, 10},
	{"auth", tlog.LevelError, 0},
}

func main() {
	configPath := flag.String("config", "tlog.toml", "TOML file with a [tlog] table")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] [selector=LEVEL|reset | selector@seconds]...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := tlog.NewConfigFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	h, err := tlog.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := tlog.Close(h); err != nil {
			fmt.Fprintf(os.Stderr, "Close error: %v\n", err)
		}
	}()

	ids := make(map[string]tlog.MessageID, len(messages))
	for _, m := range messages {
		id, err := tlog.RegisterMessage(h, m.level, m.level, m.name, m.throttle)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register %s: %v\n", m.name, err)
			return
		}
		ids[m.name] = id
	}

	for _, arg := range flag.Args() {
		if err := apply(h, arg); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}

	c, err := tlog.Get(h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	c.DoAt(tlog.LevelInfo, ids["main"], func() {
		_ = c.Once(tlog.LevelInfo, ids["main"], "reconfigured with %d overrides", flag.NArg())
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLEVEL\tREGISTERED\tTHROTTLE")
	_ = tlog.Traverse(h, func(mi *tlog.MessageInfo) error {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%gs\n", mi.ID, mi.Name, mi.FileLevel, mi.EnableLevel, mi.ThrottleInterval)
		return err
	})
	_ = w.Flush()
}

// apply handles "selector=LEVEL", "selector=reset" and "selector@seconds"
func apply(h tlog.Handle, arg string) error {
	if sel, val, ok := strings.Cut(arg, "@"); ok {
		secs, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid throttle in '%s': %w", arg, err)
		}
		n, err := tlog.SetThrottle(h, secs, sel)
		if err == nil && n == 0 {
			err = fmt.Errorf("no message matches '%s'", sel)
		}
		return err
	}

	sel, val, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("invalid override '%s', expected selector=LEVEL or selector@seconds", arg)
	}
	if strings.EqualFold(val, "reset") {
		c, err := tlog.Get(h)
		if err != nil {
			return err
		}
		c.ResetLevels(sel)
		return nil
	}
	level, err := tlog.ParseLevel(val)
	if err != nil {
		return err
	}
	n, err := tlog.SetLevel(h, level, sel)
	if err == nil && n == 0 {
		err = fmt.Errorf("no message matches '%s'", sel)
	}
	return err
}
