package model

import (
	"fmt"
	"strings"
)

// Badge is a capacity-limited group people are assigned to
type Badge struct {
	Name     string
	Capacity int
}

// RunConfig is the fixed configuration for one assignment run: the ordered
// badge list and each badge's capacity. It is never modified after creation.
type RunConfig struct {
	badges  []Badge
	byName  map[string]Badge
	ordered []string
}

// NewRunConfig validates the badge list and builds a RunConfig
func NewRunConfig(badges []Badge) (*RunConfig, error) {
	if len(badges) == 0 {
		return nil, fmt.Errorf("at least one badge is required")
	}

	cfg := &RunConfig{
		badges:  make([]Badge, 0, len(badges)),
		byName:  make(map[string]Badge, len(badges)),
		ordered: make([]string, 0, len(badges)),
	}

	for i, badge := range badges {
		badge.Name = strings.TrimSpace(badge.Name)
		if badge.Name == "" {
			return nil, fmt.Errorf("badge %d has no name", i)
		}
		if badge.Capacity < 0 {
			return nil, fmt.Errorf("badge %q has negative capacity %d", badge.Name, badge.Capacity)
		}
		if _, exists := cfg.byName[badge.Name]; exists {
			return nil, fmt.Errorf("badge %q is configured more than once", badge.Name)
		}

		cfg.badges = append(cfg.badges, badge)
		cfg.byName[badge.Name] = badge
		cfg.ordered = append(cfg.ordered, badge.Name)
	}

	return cfg, nil
}

// Badges returns the configured badges in order
func (c *RunConfig) Badges() []Badge {
	out := make([]Badge, len(c.badges))
	copy(out, c.badges)
	return out
}

// BadgeNames returns the badge names in configured order
func (c *RunConfig) BadgeNames() []string {
	out := make([]string, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Badge looks up a badge by name
func (c *RunConfig) Badge(name string) (Badge, error) {
	badge, ok := c.byName[name]
	if !ok {
		return Badge{}, &UnknownBadgeError{Badge: name}
	}
	return badge, nil
}

// HasBadge reports whether the badge is configured
func (c *RunConfig) HasBadge(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// TotalCapacity sums the capacity of every badge
func (c *RunConfig) TotalCapacity() int {
	total := 0
	for _, badge := range c.badges {
		total += badge.Capacity
	}
	return total
}
