package compat

import (
	"fmt"

	"github.com/lixenwraith/tlog"
)

// Builder provides a flexible way to create configured adapters for gnet and fasthttp.
// It can use an existing handle or context, or open a new context from a *tlog.Config.
type Builder struct {
	ctx    *tlog.Context
	cfg    *tlog.Config
	handle tlog.Handle
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{handle: tlog.HandleInvalid}
}

// WithContext specifies an existing context to use for the adapters.
// If this is set WithHandle and WithConfig are ignored.
func (b *Builder) WithContext(ctx *tlog.Context) *Builder {
	if ctx == nil {
		b.err = fmt.Errorf("tlog/compat: provided context cannot be nil")
		return b
	}
	b.ctx = ctx
	return b
}

// WithHandle specifies an open handle whose context the adapters share
func (b *Builder) WithHandle(h tlog.Handle) *Builder {
	b.handle = h
	return b
}

// WithConfig provides a configuration for a new context.
// It is used only when neither a context nor a handle was provided; without
// any of the three a default stderr context is opened.
func (b *Builder) WithConfig(cfg *tlog.Config) *Builder {
	b.cfg = cfg
	return b
}

// getContext resolves the context to be used, opening one if necessary
func (b *Builder) getContext() (*tlog.Context, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.ctx != nil {
		return b.ctx, nil
	}

	if b.handle != tlog.HandleInvalid {
		ctx, err := tlog.Get(b.handle)
		if err != nil {
			return nil, err
		}
		b.ctx = ctx
		return ctx, nil
	}

	cfg := b.cfg
	if cfg == nil {
		cfg = tlog.DefaultConfig()
	}

	h, err := tlog.Open(cfg)
	if err != nil {
		return nil, err
	}
	ctx, err := tlog.Get(h)
	if err != nil {
		return nil, err
	}

	// Cache the opened context for subsequent builds with this builder
	b.handle = h
	b.ctx = ctx
	return ctx, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	ctx, err := b.getContext()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(ctx, opts...)
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	ctx, err := b.getContext()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(ctx, opts...)
}

// GetContext returns the underlying context.
// If a context has not been provided or opened yet, it will be opened.
func (b *Builder) GetContext() (*tlog.Context, error) {
	return b.getContext()
}

// Handle returns the handle the builder opened or was given, HandleInvalid otherwise
func (b *Builder) Handle() tlog.Handle {
	return b.handle
}

// --- Example Usage ---
//
//	// 1. Open the application's log file
//	h, err := tlog.NewBuilder().
//		Path("/var/log/app/server.log").
//		MaxSizeKB(10240).
//		MaxBackups(5).
//		Open()
//	if err != nil { /* handle error */ }
//	defer tlog.Close(h)
//
//	// 2. Create a builder sharing that handle
//	builder := compat.NewBuilder().WithHandle(h)
//
//	// 3. Build the required adapters
//	gnetLogger, err := builder.BuildGnet(compat.WithGnetThrottle(1))
//	if err != nil { /* handle error */ }
//
//	fasthttpLogger, err := builder.BuildFastHTTP()
//	if err != nil { /* handle error */ }
//
//	// 4. Configure your servers with the adapters
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	server := &fasthttp.Server{
//		Handler: handler,
//		Logger:  fasthttpLogger,
//	}
//	go server.ListenAndServe(":8080")
