// Package catalog loads api definitions from YAML files and keeps the set
// of apis served by the gateway.
//
// A Catalog holds an immutable snapshot of apis. Replacing the snapshot
// is atomic, so a request that looked up an api keeps executing the tree
// it started with while a reload installs a new one. A Watcher reloads the
// definition directory when files change, and a failed reload leaves the
// current snapshot in place.
package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"mercator-hq/gateway/pkg/gateway"
)

type snapshot struct {
	// sorted by context root length, longest first
	apis []*gateway.API
}

// Observer is notified when the catalog changes. The metrics collector
// implements it.
type Observer interface {
	SetAPIs(n int)
	RecordReload(err error)
}

// Catalog is the set of apis served by the gateway. It is safe for
// concurrent use.
type Catalog struct {
	current  atomic.Pointer[snapshot]
	observer atomic.Pointer[observerBox]
	logger   *slog.Logger
}

type observerBox struct{ Observer }

// New returns an empty catalog.
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{logger: logger}
	c.current.Store(&snapshot{})
	return c
}

// Replace installs apis as the new set. Context roots must be unique.
func (c *Catalog) Replace(apis []*gateway.API) error {
	seen := make(map[string]string, len(apis))
	sorted := make([]*gateway.API, 0, len(apis))
	for _, api := range apis {
		if api == nil {
			continue
		}
		if other, ok := seen[api.ContextRoot()]; ok {
			return fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateContextRoot, api.ContextRoot(), other, api.Name())
		}
		seen[api.ContextRoot()] = api.Name()
		sorted = append(sorted, api)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].ContextRoot()) > len(sorted[j].ContextRoot())
	})

	c.current.Store(&snapshot{apis: sorted})
	c.logger.Info("api catalog updated", "apis", len(sorted))
	if o := c.observer.Load(); o != nil {
		o.SetAPIs(len(sorted))
	}
	return nil
}

// SetObserver registers o and reports the current size to it.
func (c *Catalog) SetObserver(o Observer) {
	if o == nil {
		c.observer.Store(nil)
		return
	}
	c.observer.Store(&observerBox{o})
	o.SetAPIs(c.Len())
}

// Lookup returns the api with the longest context root matching path.
func (c *Catalog) Lookup(path string) (*gateway.API, bool) {
	for _, api := range c.current.Load().apis {
		if api.Matches(path) {
			return api, true
		}
	}
	return nil, false
}

// APIs returns the current apis ordered by name.
func (c *Catalog) APIs() []*gateway.API {
	apis := append([]*gateway.API(nil), c.current.Load().apis...)
	sort.Slice(apis, func(i, j int) bool { return apis[i].Name() < apis[j].Name() })
	return apis
}

// Len returns the number of apis.
func (c *Catalog) Len() int {
	return len(c.current.Load().apis)
}

// Reload loads dir with l and installs the result. On error the current
// set is kept.
func (c *Catalog) Reload(l *Loader, dir string) error {
	apis, err := l.LoadDir(dir)
	if err == nil {
		err = c.Replace(apis)
	}
	if o := c.observer.Load(); o != nil {
		o.RecordReload(err)
	}
	if err != nil {
		c.logger.Error("api catalog reload failed, keeping current apis", "dir", dir, "error", err)
		return err
	}
	return nil
}
