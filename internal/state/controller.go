package state

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
)

// Backend performs the actual gadget reconfiguration. All calls block until
// the underlying operation finished.
type Backend interface {
	SetMode(ctx context.Context, mode Mode) error
	// ListMedia returns candidate image identifiers with the given extension, unsorted.
	ListMedia(ctx context.Context, extension string) ([]string, error)
	InsertMedia(ctx context.Context, identifier string, mode Mode) error
	RemoveMedia(ctx context.Context) error
	PowerOff(ctx context.Context) error
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Snapshot is a read-only view of the controller used for rendering.
type Snapshot struct {
	Mode Mode
	// Media holds display names; empty for non-browseable modes.
	Media    []string
	Cursor   int
	Inserted string
}

// Controller owns the device mode, the media listing cache, the selection
// cursor and the inserted image. It is the only caller of mutating Backend
// operations. A Controller is not safe for concurrent use.
type Controller struct {
	backend Backend
	logger  Logger

	mode     Mode
	cursor   int
	inserted string

	listing     []string
	listingMode Mode
}

// NewController creates a controller and switches the backend into the initial mode.
func NewController(ctx context.Context, backend Backend, logger Logger, initial Mode) (*Controller, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	c := &Controller{backend: backend, logger: logger}
	if err := c.SetMode(ctx, initial); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) Cursor() int { return c.cursor }

// Inserted returns the display name of the mounted image, or "" when nothing is mounted.
func (c *Controller) Inserted() string {
	if c.inserted == "" {
		return ""
	}
	return filepath.Base(c.inserted)
}

// SetMode reconfigures the backend. It always clears the inserted image and
// drops the listing cache, also when target equals the current mode.
func (c *Controller) SetMode(ctx context.Context, target Mode) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidMode, target)
	}

	c.inserted = ""
	c.logger.Infof("state", "switching mode to %s", target)
	if err := c.backend.SetMode(ctx, target); err != nil {
		return &BackendError{Op: "set mode", Mode: target, Err: err}
	}
	c.mode = target
	c.listing = nil
	return nil
}

// ToggleMode cycles CD -> USB -> HDD -> CD and returns the new mode.
// SHUTDOWN is terminal, toggling there changes nothing.
func (c *Controller) ToggleMode(ctx context.Context) (Mode, error) {
	if c.mode == SHUTDOWN {
		return c.mode, nil
	}
	if err := c.SetMode(ctx, c.mode.next()); err != nil {
		return c.mode, err
	}
	return c.mode, nil
}

// ListMedia returns the sorted listing for the current mode, fetching it
// from the backend unless a listing for this mode is cached. With asNames
// only base names are returned; otherwise full identifiers.
func (c *Controller) ListMedia(ctx context.Context, asNames bool) ([]string, error) {
	if !c.mode.Browseable() {
		return nil, fmt.Errorf("%w: %s has no media listing", ErrInvalidMode, c.mode)
	}

	// An empty listing is never retained, so images copied in later show up
	// on the next refresh.
	if len(c.listing) == 0 || c.listingMode != c.mode {
		raw, err := c.backend.ListMedia(ctx, c.mode.Extension())
		if err != nil {
			return nil, &BackendError{Op: "list media", Mode: c.mode, Err: err}
		}
		listing := make([]string, 0, len(raw))
		for _, identifier := range raw {
			if identifier != "" {
				listing = append(listing, identifier)
			}
		}
		sort.Strings(listing)
		if c.cursor >= len(listing) {
			c.cursor = 0
		}
		c.listing = listing
		c.listingMode = c.mode
	}

	out := make([]string, len(c.listing))
	for i, identifier := range c.listing {
		if asNames {
			out[i] = filepath.Base(identifier)
		} else {
			out[i] = identifier
		}
	}
	return out, nil
}

// MoveNext advances the cursor. It returns false at the last entry, on an
// empty listing and in modes without a listing.
func (c *Controller) MoveNext(ctx context.Context) (bool, error) {
	if !c.mode.Browseable() {
		return false, nil
	}
	listing, err := c.ListMedia(ctx, false)
	if err != nil {
		return false, err
	}
	if len(listing) == 0 || c.cursor >= len(listing)-1 {
		return false, nil
	}
	c.cursor++
	return true, nil
}

// MovePrevious moves the cursor back. It returns false at the first entry
// and in modes without a listing.
func (c *Controller) MovePrevious() bool {
	if !c.mode.Browseable() || c.cursor == 0 {
		return false
	}
	c.cursor--
	return true
}

// InsertImage replaces the mounted image with the selected one. Any mounted
// image is removed first, even if nothing new can be inserted.
func (c *Controller) InsertImage(ctx context.Context) error {
	if err := c.RemoveImage(ctx); err != nil {
		return err
	}
	if !c.mode.Browseable() {
		c.logger.Errorf("state", "no media in %s mode", c.mode)
		return ErrNoMediaAvailable
	}

	listing, err := c.ListMedia(ctx, false)
	if err != nil {
		return err
	}
	if len(listing) == 0 {
		c.logger.Errorf("state", "no %s image available", c.mode.Extension())
		return ErrNoMediaAvailable
	}

	identifier := listing[c.cursor]
	c.logger.Infof("state", "inserting %s: %s", c.mode, identifier)
	if err := c.backend.InsertMedia(ctx, identifier, c.mode); err != nil {
		return &BackendError{Op: "insert media", Mode: c.mode, Err: err}
	}
	c.inserted = identifier
	return nil
}

// RemoveImage unmounts through the backend whether or not anything is
// mounted. It does nothing in modes without a listing.
func (c *Controller) RemoveImage(ctx context.Context) error {
	if !c.mode.Browseable() {
		return nil
	}
	c.inserted = ""
	if err := c.backend.RemoveMedia(ctx); err != nil {
		return &BackendError{Op: "remove media", Mode: c.mode, Err: err}
	}
	return nil
}

// PrepareShutdown unmounts and enters SHUTDOWN so the caller can render the
// shutdown screen before calling Shutdown.
func (c *Controller) PrepareShutdown(ctx context.Context) error {
	if err := c.RemoveImage(ctx); err != nil {
		return err
	}
	return c.SetMode(ctx, SHUTDOWN)
}

// Shutdown asks the backend to power the machine off. On success the
// process is normally terminated from outside before this returns.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.logger.Infof("state", "powering off")
	if err := c.backend.PowerOff(ctx); err != nil {
		return &BackendError{Op: "power off", Mode: c.mode, Err: err}
	}
	return nil
}

// Snapshot captures what the display needs. For browseable modes this may
// fetch the listing from the backend.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Mode: c.mode, Cursor: c.cursor, Inserted: c.Inserted()}
	if !c.mode.Browseable() {
		return snap, nil
	}
	names, err := c.ListMedia(ctx, true)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Media = names
	snap.Cursor = c.cursor
	return snap, nil
}
