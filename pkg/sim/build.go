package sim

import (
	"errors"
	"fmt"

	"github.com/samlin1112/CitySim/pkg/cost"
	"github.com/samlin1112/CitySim/pkg/grid"
)

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientMaterials = errors.New("insufficient materials")
	ErrCannotUpgradeEmpty    = errors.New("empty tiles cannot be upgraded")
)

// Quote returns what building c at (x, y) would cost.
func (c *City) Quote(x, y int, cat grid.Category) (cost.Price, error) {
	if !cat.Valid() {
		return cost.Price{}, fmt.Errorf("%w: %d", grid.ErrUnknownCategory, int(cat))
	}
	if _, err := c.Grid.Get(x, y); err != nil {
		return cost.Price{}, err
	}
	return cost.Build(cat), nil
}

// QuoteUpgrade returns what upgrading the tile at (x, y) would cost.
func (c *City) QuoteUpgrade(x, y int) (cost.Price, error) {
	t, err := c.Grid.Get(x, y)
	if err != nil {
		return cost.Price{}, err
	}
	if t.IsEmpty() {
		return cost.Price{}, fmt.Errorf("%w: (%d,%d)", ErrCannotUpgradeEmpty, x, y)
	}
	return cost.Upgrade(t.Category, t.Level), nil
}

// Build places a level 1 tile of category cat at (x, y), replacing whatever
// stood there without refund. Building Empty demolishes for free.
// On error the city is unchanged.
func (c *City) Build(x, y int, cat grid.Category) (cost.Price, error) {
	price, err := c.Quote(x, y, cat)
	if err != nil {
		return cost.Price{}, err
	}
	if err := c.afford(price); err != nil {
		return cost.Price{}, fmt.Errorf("building %s at (%d,%d): %w", cat, x, y, err)
	}
	c.pay(price)
	_ = c.Grid.Set(x, y, grid.Tile{Category: cat, Level: 1})
	return price, nil
}

// Upgrade raises the tile at (x, y) by one level. On error the city is
// unchanged.
func (c *City) Upgrade(x, y int) (cost.Price, error) {
	price, err := c.QuoteUpgrade(x, y)
	if err != nil {
		return cost.Price{}, err
	}
	if err := c.afford(price); err != nil {
		return cost.Price{}, fmt.Errorf("upgrading (%d,%d): %w", x, y, err)
	}
	t, _ := c.Grid.Cell(x, y)
	c.pay(price)
	t.Level++
	return price, nil
}

func (c *City) afford(p cost.Price) error {
	if c.Money < p.Money {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, p.Money, c.Money)
	}
	if c.Materials < p.Materials {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientMaterials, p.Materials, c.Materials)
	}
	return nil
}

func (c *City) pay(p cost.Price) {
	c.Money -= p.Money
	c.Materials -= p.Materials
}
