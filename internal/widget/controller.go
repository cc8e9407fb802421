package widget

import (
	"errors"
	"sync"
)

// ErrNoBaseURL is returned by Mount when the backend URL is missing.
var ErrNoBaseURL = errors.New("widget: base URL is required")

// Controller manages a single mounted widget instance, the headless analog
// of the embed script's global mount/unmount/send surface.
type Controller struct {
	mu       sync.Mutex
	instance *Instance
}

// NewController creates an unmounted controller.
func NewController() *Controller {
	return &Controller{}
}

// Mount creates and starts an instance. Calling Mount while already mounted
// is a no-op that returns the existing instance, whatever config is passed.
func (c *Controller) Mount(cfg Config) (*Instance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.instance != nil {
		return c.instance, nil
	}
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	inst := newInstance(cfg)
	inst.start()
	c.instance = inst
	return inst, nil
}

// Unmount tears down the mounted instance, cancelling any in-flight
// requests. Safe to call when not mounted.
func (c *Controller) Unmount() {
	c.mu.Lock()
	inst := c.instance
	c.instance = nil
	c.mu.Unlock()

	if inst != nil {
		inst.close()
	}
}

// SendMessage dispatches a host-initiated message into the mounted instance.
// No-op when unmounted.
func (c *Controller) SendMessage(text string) {
	c.mu.Lock()
	inst := c.instance
	c.mu.Unlock()

	if inst != nil {
		inst.SendMessage(text)
	}
}

// Instance returns the mounted instance, or nil.
func (c *Controller) Instance() *Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instance
}

// AutoMount mounts from WIDGET_* environment variables, mirroring the embed
// tag's data attributes.
func (c *Controller) AutoMount() (*Instance, error) {
	return c.Mount(ConfigFromEnv())
}
