// FILE: tlog/registry.go
package tlog

import (
	"sync"
)

// Handle identifies an open context in the process-wide table
type Handle int

// HandleInvalid is returned by failed opens
const HandleInvalid Handle = -1

// handles maps small integers to open contexts, freed slots are reused lowest first
var handles = struct {
	sync.Mutex
	slots []*Context
}{}

// Open creates a context from cfg and registers it under a new handle.
func Open(cfg *Config) (Handle, error) {
	c, err := NewContext(cfg)
	if err != nil {
		return HandleInvalid, err
	}
	return register(c), nil
}

// OpenFlags opens a context the way the classic flag-based call does:
// flags carry the kind (OpenStdout, OpenStderr, OpenFile) and OpenFlock.
// The file parameters are ignored for the standard streams.
func OpenFlags(flags uint, path string, maxSize int64, maxAge float64, maxBackups int64, openFlags int) (Handle, error) {
	cfg := DefaultConfig()
	switch flags & OpenKind {
	case OpenStdout:
		cfg.Kind = KindStdout.String()
	case OpenStderr:
		cfg.Kind = KindStderr.String()
	case OpenFile:
		cfg.Kind = KindFile.String()
		cfg.Path = path
		cfg.MaxSizeBytes = maxSize
		cfg.MaxAgeS = maxAge
		cfg.MaxBackups = maxBackups
		cfg.OpenFlags = int64(openFlags)
	default:
		return HandleInvalid, fmtErrorf("invalid open flags: %#x", flags)
	}
	cfg.Flock = flags&OpenFlock != 0
	return Open(cfg)
}

func register(c *Context) Handle {
	handles.Lock()
	defer handles.Unlock()
	for i, slot := range handles.slots {
		if slot == nil {
			handles.slots[i] = c
			return Handle(i)
		}
	}
	handles.slots = append(handles.slots, c)
	return Handle(len(handles.slots) - 1)
}

// Get returns the context behind h.
func Get(h Handle) (*Context, error) {
	handles.Lock()
	defer handles.Unlock()
	if h < 0 || int(h) >= len(handles.slots) || handles.slots[h] == nil {
		return nil, ErrInvalidHandle
	}
	return handles.slots[h], nil
}

// Incref adds a holder to h and returns the same handle.
func Incref(h Handle) (Handle, error) {
	handles.Lock()
	defer handles.Unlock()
	if h < 0 || int(h) >= len(handles.slots) || handles.slots[h] == nil {
		return HandleInvalid, ErrInvalidHandle
	}
	handles.slots[h].refs.Add(1)
	return h, nil
}

// Close drops a holder of h. The last holder flushes and closes the writer
// and frees the handle; closing a freed handle returns ErrInvalidHandle.
func Close(h Handle) error {
	handles.Lock()
	if h < 0 || int(h) >= len(handles.slots) || handles.slots[h] == nil {
		handles.Unlock()
		return ErrInvalidHandle
	}
	c := handles.slots[h]
	if c.closed.Load() {
		// shut down directly through Context.Close, the slot is stale
		handles.slots[h] = nil
		handles.Unlock()
		return ErrInvalidHandle
	}
	last := c.refs.Add(-1) <= 0
	if last {
		handles.slots[h] = nil
	}
	handles.Unlock()

	if !last {
		return nil
	}
	return c.shutdown()
}

// SetBufferSize changes the soft flush threshold of h.
func SetBufferSize(h Handle, size int) error {
	c, err := Get(h)
	if err != nil {
		return err
	}
	return c.SetBufferSize(size)
}

// RegisterMessage adds a message to the registry of h.
func RegisterMessage(h Handle, fileLevel, enableLevel Level, name string, throttle float64) (MessageID, error) {
	c, err := Get(h)
	if err != nil {
		return -1, err
	}
	return c.Register(fileLevel, enableLevel, name, throttle)
}

// SetLevel changes the file level of matching messages of h.
func SetLevel(h Handle, level Level, selector string) (int, error) {
	c, err := Get(h)
	if err != nil {
		return 0, err
	}
	return c.SetLevel(selector, level), nil
}

// SetThrottle changes the throttle interval of matching messages of h.
func SetThrottle(h Handle, interval float64, selector string) (int, error) {
	c, err := Get(h)
	if err != nil {
		return 0, err
	}
	return c.SetThrottle(selector, interval), nil
}

// Traverse visits the messages of h in id order.
func Traverse(h Handle, fn func(*MessageInfo) error) error {
	c, err := Get(h)
	if err != nil {
		return err
	}
	return c.Traverse(fn)
}
