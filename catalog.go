/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package shapestore

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is a thread-safe collection of models addressed by name.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		models: make(map[string]*Model),
	}
}

// Register adds m under its name.
func (c *Catalog) Register(m *Model) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.models[m.Name()]; exists {
		return fmt.Errorf("model %q already registered", m.Name())
	}
	c.models[m.Name()] = m
	return nil
}

// Model retrieves the model registered under name.
func (c *Catalog) Model(name string) (*Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, exists := c.models[name]
	if !exists {
		return nil, fmt.Errorf("model %q not found", name)
	}
	return m, nil
}

// Remove drops the model registered under name.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.models[name]; !exists {
		return fmt.Errorf("model %q not found", name)
	}
	delete(c.models, name)
	return nil
}

// Names returns the registered model names in order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
