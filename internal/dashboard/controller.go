// Package dashboard drives the admin panel: one generic panel per content
// collection, an active tab, and admission through the access gate.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/saltware/website/internal/auth"
	"github.com/saltware/website/internal/content"
)

type Controller struct {
	log    *zap.Logger
	gate   *auth.Gate
	panels map[content.Kind]Panel

	mu     sync.Mutex
	active content.Kind
}

func New(backend content.Backend, gate *auth.Gate, log *zap.Logger) *Controller {
	return &Controller{
		log:    log,
		gate:   gate,
		active: content.KindServices,
		panels: map[content.Kind]Panel{
			content.KindServices:   newPanel(backend, content.Services, log),
			content.KindEmployees:  newPanel(backend, content.Employees, log),
			content.KindProjects:   newPanel(backend, content.Projects, log),
			content.KindIndustries: newPanel(backend, content.Industries, log),
			content.KindStats:      newPanel(backend, content.Stats, log),
		},
	}
}

// Tabs returns the collections in display order.
func (c *Controller) Tabs() []content.Kind { return content.Kinds() }

// Admit reports whether the gate currently allows dashboard entry.
func (c *Controller) Admit() error {
	if !c.gate.Admitted() {
		return auth.ErrNotAdmin
	}
	return nil
}

// Panel returns the panel for a collection.
func (c *Controller) Panel(kind content.Kind) (Panel, error) {
	p, ok := c.panels[kind]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", kind)
	}
	return p, nil
}

// SelectTab activates a collection and loads its list. A load failure leaves
// the panel's previous list in place and is surfaced to the caller.
func (c *Controller) SelectTab(ctx context.Context, kind content.Kind) (Panel, error) {
	p, err := c.Panel(kind)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.active = kind
	c.mu.Unlock()
	if err := p.Reload(ctx); err != nil {
		c.log.Warn("tab load failed", zap.String("collection", string(kind)), zap.Error(err))
		return p, err
	}
	return p, nil
}

// ActiveTab returns the collection selected last.
func (c *Controller) ActiveTab() content.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
