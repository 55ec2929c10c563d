// Package catalog loads the demo definitions the documentation site
// serves: which demos exist, their initial source units, and how each
// one is presented.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/formlab/playground/internal/engine"
	"github.com/formlab/playground/internal/infrastructure/logging"
)

//go:embed demos.yaml
var defaultCatalog []byte

// Demo variants. Single-file demos expose one buffer and enable the
// companion data-class heuristic; multi-file demos combine several
// named buffers around one entry unit.
const (
	VariantSingle = "single"
	VariantMulti  = "multi"
)

// maxRemoteUnitSize caps fetched remote source, 1 MiB is far above any
// real demo.
const maxRemoteUnitSize = 1 << 20

// Unit is one named source buffer of a demo as configured.
type Unit struct {
	Name     string `yaml:"name" json:"name"`
	Content  string `yaml:"content" json:"content"`
	URL      string `yaml:"url" json:"-"`
	Entry    bool   `yaml:"entry" json:"entry"`
	ReadOnly bool   `yaml:"read_only" json:"read_only"`
}

// Demo is one live-demo definition.
type Demo struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description,omitempty"`
	Variant     string `yaml:"variant" json:"variant"`
	Units       []Unit `yaml:"units" json:"units"`
}

// SourceUnits converts the configured units into engine source units.
func (d *Demo) SourceUnits() []engine.SourceUnit {
	units := make([]engine.SourceUnit, 0, len(d.Units))
	for _, u := range d.Units {
		units = append(units, engine.SourceUnit{
			Name:     u.Name,
			Content:  u.Content,
			IsEntry:  u.Entry,
			ReadOnly: u.ReadOnly,
		})
	}
	return units
}

// EntryName returns the entry unit's name. Single-unit demos treat
// their only unit as the entry.
func (d *Demo) EntryName() string {
	for _, u := range d.Units {
		if u.Entry {
			return u.Name
		}
	}
	if len(d.Units) == 1 {
		return d.Units[0].Name
	}
	return ""
}

type catalogFile struct {
	Demos []Demo `yaml:"demos"`
}

// Catalog is the loaded, validated demo set. Immutable after Load.
type Catalog struct {
	demos map[string]*Demo
	order []string
}

// Load reads the catalog from path, or the embedded default catalog
// when path is empty. Remote units are fetched eagerly so a broken
// URL fails startup, not a visitor's first click.
func Load(path string, logger *logging.Logger) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		read, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		data = read
	}

	var parsed catalogFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	// Demo descriptions are rendered as HTML by the site; strip
	// anything outside the user-generated-content policy.
	policy := bluemonday.UGCPolicy()

	c := &Catalog{demos: make(map[string]*Demo, len(parsed.Demos))}
	var fetcher *retryablehttp.Client

	for i := range parsed.Demos {
		demo := &parsed.Demos[i]
		if demo.ID == "" {
			return nil, fmt.Errorf("catalog demo %d has no id", i)
		}
		if _, exists := c.demos[demo.ID]; exists {
			return nil, fmt.Errorf("duplicate demo id %q", demo.ID)
		}
		if demo.Variant == "" {
			demo.Variant = VariantSingle
		}
		if demo.Variant != VariantSingle && demo.Variant != VariantMulti {
			return nil, fmt.Errorf("demo %q has unknown variant %q", demo.ID, demo.Variant)
		}
		if len(demo.Units) == 0 {
			return nil, fmt.Errorf("demo %q has no source units", demo.ID)
		}
		if demo.Variant == VariantSingle && len(demo.Units) != 1 {
			return nil, fmt.Errorf("single-file demo %q must have exactly one unit, got %d", demo.ID, len(demo.Units))
		}
		if demo.Variant == VariantMulti && demo.EntryName() == "" {
			return nil, fmt.Errorf("multi-file demo %q has no entry unit", demo.ID)
		}

		demo.Description = policy.Sanitize(demo.Description)

		for j := range demo.Units {
			unit := &demo.Units[j]
			if unit.Name == "" {
				return nil, fmt.Errorf("demo %q unit %d has no name", demo.ID, j)
			}
			if unit.URL == "" {
				continue
			}
			if fetcher == nil {
				fetcher = retryablehttp.NewClient()
				fetcher.RetryMax = 3
				fetcher.Logger = nil
			}
			content, err := fetchUnit(fetcher, unit.URL)
			if err != nil {
				return nil, fmt.Errorf("demo %q unit %q: %w", demo.ID, unit.Name, err)
			}
			unit.Content = content
			logger.Info("Fetched remote demo unit",
				zap.String("demo", demo.ID),
				zap.String("unit", unit.Name),
				zap.String("url", unit.URL),
			)
		}

		c.demos[demo.ID] = demo
		c.order = append(c.order, demo.ID)
	}

	logger.Info("Demo catalog loaded", zap.Int("demos", len(c.order)))
	return c, nil
}

// fetchUnit downloads one remote source unit.
func fetchUnit(client *retryablehttp.Client, url string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteUnitSize))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}

// Get retrieves a demo by id.
func (c *Catalog) Get(id string) (*Demo, bool) {
	demo, ok := c.demos[id]
	return demo, ok
}

// List returns all demos in catalog order.
func (c *Catalog) List() []*Demo {
	demos := make([]*Demo, 0, len(c.order))
	for _, id := range c.order {
		demos = append(demos, c.demos[id])
	}
	return demos
}

// Len returns the number of demos.
func (c *Catalog) Len() int {
	return len(c.order)
}
