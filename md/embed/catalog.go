package embed

import (
	"bytes"
	_ "embed"
	"io"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the static list of emoticons that the emoji picker offers.
type Catalog struct {
	// Items is the list of emojis in display order.
	Items []Emoji `yaml:"imgs"`

	byTitle map[string]int
}

// LoadCatalog reads a YAML catalog from r. Items without a src are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "cannot decode emoji catalog")
	}

	c.byTitle = make(map[string]int, len(c.Items))
	for i, item := range c.Items {
		if err := item.validate(); err != nil {
			return nil, errors.Wrapf(err, "catalog item %d", i)
		}
		if _, dup := c.byTitle[item.Title]; !dup && item.Title != "" {
			c.byTitle[item.Title] = i
		}
	}

	return &c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic("embed: built-in catalog: " + err.Error())
	}
	return c
})

// DefaultCatalog returns the built-in emoticon catalog. The returned catalog
// is shared and must not be modified.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// Len returns the number of emojis in the catalog.
func (c *Catalog) Len() int {
	return len(c.Items)
}

// Lookup finds the first emoji with the given title.
func (c *Catalog) Lookup(title string) (Emoji, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return Emoji{}, false
	}
	return c.Items[i], true
}
