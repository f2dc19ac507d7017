package container

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"stringcalc/adapters/socket"
	"stringcalc/internal"
	"stringcalc/internal/api"
	"stringcalc/internal/config"
	"stringcalc/internal/dom"
	"stringcalc/internal/errors"
	"stringcalc/internal/metrics"
	"stringcalc/internal/updater"
	"stringcalc/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Page
	Document *dom.Document
	Updater  *updater.Updater

	// Infrastructure
	Client  *socket.Client
	Metrics *metrics.Metrics
	SSEHub  *api.SSEHub
	Server  *ui.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{Config: cfg}
	logger := internal.NewLogger("Container", cfg.Log.Level)

	doc, err := LoadPage(cfg.Page.Template)
	if err != nil {
		return nil, err
	}
	c.Document = doc

	c.Client = socket.NewClient(socket.Config{
		URL:              cfg.Peer.URL,
		ReconnectTimeout: cfg.Peer.ReconnectTimeout,
		WriteTimeout:     cfg.Peer.WriteTimeout,
		PongWait:         cfg.Peer.PongWait,
		SendBuffer:       cfg.Peer.SendBuffer,
		Logger:           logger.Named("Socket"),
	})

	opts := updater.Options{
		TableID: cfg.Page.TableID,
		Logger:  logger.Named("Updater"),
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
		opts.Recorder = c.Metrics
	}
	c.Updater = updater.New(doc, c.Client, opts)

	c.SSEHub = api.NewSSEHub()
	c.Updater.Subscribe(c.SSEHub.Publish)

	serverOpts := ui.Options{Peer: c.Client, ShutdownTimeout: cfg.Server.ShutdownTimeout}
	if c.Metrics != nil {
		serverOpts.Metrics = c.Metrics.Handler()
	}
	c.Server, err = ui.NewServer(c.Updater, c.SSEHub, serverOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build UI server")
	}

	logger.Info("page ready (table #%s, peer %s, metrics %t)",
		cfg.Page.TableID, cfg.Peer.URL, cfg.Metrics.Enabled)
	return c, nil
}

// LoadPage parses the page at path, or the embedded calculator page when
// path is empty.
func LoadPage(path string) (*dom.Document, error) {
	var raw []byte
	var err error
	if path == "" {
		raw, err = ui.CalculatorPage()
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read page template")
	}
	doc, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse page template")
	}
	return doc, nil
}

// Run starts the page loop, the peer channel, the viewer hub and the HTTP
// server, and stops them all when ctx ends or one of them fails.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Updater.Run(ctx) })
	g.Go(func() error { return c.SSEHub.Run(ctx) })
	g.Go(func() error { return c.Client.Run(ctx) })
	g.Go(func() error { return c.Server.Start(ctx, ":"+c.Config.Server.Port) })

	return g.Wait()
}

// Close releases the peer connection
func (c *Container) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
