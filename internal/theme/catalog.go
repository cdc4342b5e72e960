// Package theme models Notebookinator themes and picks the one a notebook uses.
package theme

// RawEntryType is an entry type as reported by Typst, color still encoded.
type RawEntryType struct {
	Name  string
	Color string
}

// Theme is a named list of entry types.
type Theme struct {
	Name       string
	EntryTypes []RawEntryType
}

// Catalog holds the themes that define entry types, in query order. Themes
// without entry types are never stored.
type Catalog struct {
	themes []Theme
	index  map[string]int
}

// NewCatalog builds a catalog. A repeated name replaces the earlier entry in
// place.
func NewCatalog(themes ...Theme) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for _, t := range themes {
		c.Add(t)
	}
	return c
}

// Add inserts t, ignoring themes without entry types.
func (c *Catalog) Add(t Theme) {
	if len(t.EntryTypes) == 0 {
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[t.Name]; ok {
		c.themes[i] = t
		return
	}
	c.index[t.Name] = len(c.themes)
	c.themes = append(c.themes, t)
}

// Lookup returns the theme called name.
func (c *Catalog) Lookup(name string) (Theme, bool) {
	if c == nil {
		return Theme{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Theme{}, false
	}
	return c.themes[i], true
}

// Themes returns the themes in query order.
func (c *Catalog) Themes() []Theme {
	if c == nil {
		return nil
	}
	out := make([]Theme, len(c.themes))
	copy(out, c.themes)
	return out
}

// Names returns theme names in query order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.themes))
	for _, t := range c.themes {
		names = append(names, t.Name)
	}
	return names
}

// Len reports the number of themes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.themes)
}
