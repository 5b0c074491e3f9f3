// Package catalog holds the static purchasable items and achievement
// definitions. A Catalog is loaded once at startup and never mutated.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"iter"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultDocument []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Pricing is the cost curve shared by upgrades and businesses.
type Pricing struct {
	BasePrice       float64
	PriceMultiplier float64
}

type Upgrade struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	Description     string  `yaml:"description" json:"description"`
	Icon            string  `yaml:"icon" json:"icon"`
	BasePrice       float64 `yaml:"base_price" json:"basePrice"`
	PriceMultiplier float64 `yaml:"price_multiplier" json:"priceMultiplier"`
	IncomePerSecond float64 `yaml:"income_per_second" json:"incomePerSecond"`
}

func (u Upgrade) Pricing() Pricing {
	return Pricing{BasePrice: u.BasePrice, PriceMultiplier: u.PriceMultiplier}
}

type Business struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	Description     string  `yaml:"description" json:"description"`
	Icon            string  `yaml:"icon" json:"icon"`
	BasePrice       float64 `yaml:"base_price" json:"basePrice"`
	PriceMultiplier float64 `yaml:"price_multiplier" json:"priceMultiplier"`
	BaseIncome      float64 `yaml:"base_income" json:"baseIncome"`
}

func (b Business) Pricing() Pricing {
	return Pricing{BasePrice: b.BasePrice, PriceMultiplier: b.PriceMultiplier}
}

// AchievementType selects which running total an achievement is checked against.
type AchievementType string

const (
	AchievementBalance       AchievementType = "balance"
	AchievementTotalEarned   AchievementType = "totalEarned"
	AchievementUpgradeCount  AchievementType = "upgradeCount"
	AchievementPrestigeCount AchievementType = "prestigeCount"
)

func (t AchievementType) Valid() bool {
	switch t {
	case AchievementBalance, AchievementTotalEarned, AchievementUpgradeCount, AchievementPrestigeCount:
		return true
	default:
		return false
	}
}

type Achievement struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Requirement float64         `yaml:"requirement" json:"requirement"`
	Type        AchievementType `yaml:"type" json:"type"`
}

type document struct {
	Upgrades     []Upgrade     `yaml:"upgrades"`
	Businesses   []Business    `yaml:"businesses"`
	Achievements []Achievement `yaml:"achievements"`
}

// Catalog is the validated, read-only item set. Slices keep document order.
type Catalog struct {
	upgrades     []Upgrade
	businesses   []Business
	achievements []Achievement

	upgradeIdx  map[string]int
	businessIdx map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultDocument)
	if err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}

	return c, nil
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", path, err)
	}

	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	return New(doc.Upgrades, doc.Businesses, doc.Achievements)
}

// New validates the given definitions and builds a Catalog from them.
func New(upgrades []Upgrade, businesses []Business, achievements []Achievement) (*Catalog, error) {
	c := &Catalog{
		upgrades:     append([]Upgrade(nil), upgrades...),
		businesses:   append([]Business(nil), businesses...),
		achievements: append([]Achievement(nil), achievements...),
		upgradeIdx:   make(map[string]int, len(upgrades)),
		businessIdx:  make(map[string]int, len(businesses)),
	}

	for i, u := range c.upgrades {
		err := validateItem(u.ID, u.Pricing(), u.IncomePerSecond)
		if err != nil {
			return nil, fmt.Errorf("upgrade %d: %w", i, err)
		}

		if _, dup := c.upgradeIdx[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate upgrade id %q", ErrInvalidCatalog, u.ID)
		}

		c.upgradeIdx[u.ID] = i
	}

	for i, b := range c.businesses {
		err := validateItem(b.ID, b.Pricing(), b.BaseIncome)
		if err != nil {
			return nil, fmt.Errorf("business %d: %w", i, err)
		}

		if _, dup := c.businessIdx[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate business id %q", ErrInvalidCatalog, b.ID)
		}

		c.businessIdx[b.ID] = i
	}

	seen := make(map[string]struct{}, len(c.achievements))
	for i, a := range c.achievements {
		switch {
		case a.ID == "":
			return nil, fmt.Errorf("achievement %d: %w: empty id", i, ErrInvalidCatalog)
		case !a.Type.Valid():
			return nil, fmt.Errorf("achievement %q: %w: unknown type %q", a.ID, ErrInvalidCatalog, a.Type)
		case !finite(a.Requirement) || a.Requirement < 0:
			return nil, fmt.Errorf("achievement %q: %w: requirement must be finite and not negative", a.ID, ErrInvalidCatalog)
		}

		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate achievement id %q", ErrInvalidCatalog, a.ID)
		}

		seen[a.ID] = struct{}{}
	}

	return c, nil
}

func validateItem(id string, p Pricing, income float64) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty id", ErrInvalidCatalog)
	case !finite(p.BasePrice) || p.BasePrice <= 0:
		return fmt.Errorf("%w: %q base price must be positive", ErrInvalidCatalog, id)
	case !finite(p.PriceMultiplier) || p.PriceMultiplier <= 1:
		return fmt.Errorf("%w: %q price multiplier must be greater than 1", ErrInvalidCatalog, id)
	case !finite(income) || income < 0:
		return fmt.Errorf("%w: %q income must not be negative", ErrInvalidCatalog, id)
	}

	return nil
}

// NaN fails every comparison, so it is ruled out before any range check.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Upgrades returns a copy of the upgrade list in catalog order.
func (c *Catalog) Upgrades() []Upgrade {
	return append([]Upgrade(nil), c.upgrades...)
}

// Businesses returns a copy of the business list in catalog order.
func (c *Catalog) Businesses() []Business {
	return append([]Business(nil), c.businesses...)
}

// Achievements returns a copy of the achievement list in catalog order.
func (c *Catalog) Achievements() []Achievement {
	return append([]Achievement(nil), c.achievements...)
}

// AllUpgrades iterates the upgrades in catalog order without copying the list.
func (c *Catalog) AllUpgrades() iter.Seq[Upgrade] {
	return func(yield func(Upgrade) bool) {
		for _, u := range c.upgrades {
			if !yield(u) {
				return
			}
		}
	}
}

// AllBusinesses iterates the businesses in catalog order without copying the list.
func (c *Catalog) AllBusinesses() iter.Seq[Business] {
	return func(yield func(Business) bool) {
		for _, b := range c.businesses {
			if !yield(b) {
				return
			}
		}
	}
}

// AllAchievements iterates the achievements in catalog order without copying the list.
func (c *Catalog) AllAchievements() iter.Seq[Achievement] {
	return func(yield func(Achievement) bool) {
		for _, a := range c.achievements {
			if !yield(a) {
				return
			}
		}
	}
}

func (c *Catalog) Upgrade(id string) (Upgrade, bool) {
	i, ok := c.upgradeIdx[id]
	if !ok {
		return Upgrade{}, false
	}

	return c.upgrades[i], true
}

func (c *Catalog) Business(id string) (Business, bool) {
	i, ok := c.businessIdx[id]
	if !ok {
		return Business{}, false
	}

	return c.businesses[i], true
}
