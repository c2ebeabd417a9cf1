package grid

import "fmt"

// Category is the functional type assigned to a grid cell.
type Category int

const (
	Empty Category = iota
	Residential
	Commercial
	Industrial
	PowerPlant
	WaterPlant
	Road
	Park
)

// Categories lists every category in declaration order.
var Categories = []Category{Empty, Residential, Commercial, Industrial, PowerPlant, WaterPlant, Road, Park}

var categoryNames = [...]string{
	Empty:       "Empty",
	Residential: "Residential",
	Commercial:  "Commercial",
	Industrial:  "Industrial",
	PowerPlant:  "PowerPlant",
	WaterPlant:  "WaterPlant",
	Road:        "Road",
	Park:        "Park",
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= Empty && c <= Park
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory maps a canonical category name back to its value.
// Matching is exact; save files always carry the canonical spelling.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return Empty, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Tile is a single grid cell.
type Tile struct {
	Category Category `json:"category" yaml:"category"`
	Level    int      `json:"level" yaml:"level"`
}

// EmptyTile is the value every cell starts with and returns to when cleared.
var EmptyTile = Tile{Category: Empty, Level: 1}

// IsEmpty reports whether nothing is built on the tile.
func (t Tile) IsEmpty() bool {
	return t.Category == Empty
}
