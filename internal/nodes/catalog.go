// Package nodes loads the static node catalog: the vantage points a user
// can run measurements from. The catalog is read once at startup and never
// changes for the process lifetime.
package nodes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/looking-glass/backend/internal/models"
)

// Catalog is the immutable set of nodes, in file order.
type Catalog struct {
	nodes []models.Node
	byID  map[string]*models.Node
}

type catalogFile struct {
	Nodes []models.Node `yaml:"nodes"`
}

// Load reads the catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading node catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing node catalog: %w", err)
	}

	if len(file.Nodes) == 0 {
		return nil, fmt.Errorf("node catalog is empty")
	}

	c := &Catalog{
		nodes: file.Nodes,
		byID:  make(map[string]*models.Node, len(file.Nodes)),
	}

	for i := range c.nodes {
		n := &c.nodes[i]

		if n.ID == "" || n.Name == "" || n.Tag == "" {
			return nil, fmt.Errorf("node %d: id, name and tag are required", i)
		}

		if _, exists := c.byID[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}

		c.byID[n.ID] = n
	}

	return c, nil
}

// All returns every node, in catalog order.
func (c *Catalog) All() []models.Node {
	return c.nodes
}

// Get looks a node up by id.
func (c *Catalog) Get(id string) (*models.Node, bool) {
	n, ok := c.byID[id]

	return n, ok
}
