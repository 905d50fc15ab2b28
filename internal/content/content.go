// internal/content/content.go

// Package content loads authored scenario graphs.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/storage"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// DefaultScenarioID is the id of the embedded scenario
const DefaultScenarioID = "crisis-touchpoint"

//go:embed crisis_touchpoint.yaml
var defaultScenario []byte

// Parse decodes and validates one scenario document
func Parse(data []byte) (*models.Graph, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var g models.Graph
	if err := dec.Decode(&g); err != nil {
		return nil, errors.NewConfigurationError("decode scenario", err)
	}
	if err := g.Validate(); err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("scenario %q is invalid", g.ID), err)
	}
	return &g, nil
}

var (
	defaultOnce  sync.Once
	defaultGraph *models.Graph
	defaultErr   error
)

// Default returns the embedded crisis touchpoint scenario
func Default() (*models.Graph, error) {
	defaultOnce.Do(func() {
		defaultGraph, defaultErr = Parse(defaultScenario)
	})
	return defaultGraph, defaultErr
}

// MustDefault is Default for callers that cannot proceed without it
func MustDefault() *models.Graph {
	g, err := Default()
	if err != nil {
		panic(err)
	}
	return g
}

// Summary is the catalogue view of a scenario
type Summary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Intro        string   `json:"intro"`
	Setting      string   `json:"setting"`
	InitialRoute string   `json:"initial_route"`
	Routes       []string `json:"routes"`
}

// Summarize builds the catalogue view of g
func Summarize(g *models.Graph) Summary {
	return Summary{
		ID:           g.ID,
		Title:        g.Title,
		Intro:        g.Intro,
		Setting:      g.Setting,
		InitialRoute: g.InitialRoute,
		Routes:       g.RouteIDs(),
	}
}

// Library holds every loaded scenario by id. The embedded scenario is
// always present; files from the store are layered on top.
type Library struct {
	store  *storage.ScenarioStore
	logger *utils.Logger

	mu     sync.RWMutex
	graphs map[string]*models.Graph
}

// NewLibrary loads the embedded scenario and every file of store. A
// nil store yields a library holding only the embedded scenario.
func NewLibrary(store *storage.ScenarioStore) (*Library, error) {
	l := &Library{
		store:  store,
		logger: utils.GetLogger(),
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the scenario directory. A file that fails to parse
// aborts the reload and leaves the previous set active.
func (l *Library) Reload() error {
	def, err := Default()
	if err != nil {
		return err
	}
	graphs := map[string]*models.Graph{def.ID: def}

	if l.store != nil {
		names, err := l.store.List()
		if err != nil {
			return errors.NewProcessingError("list scenarios", err)
		}
		for _, name := range names {
			data, err := l.store.Load(name)
			if err != nil {
				return errors.NewProcessingError("read scenario "+name, err)
			}
			g, err := Parse(data)
			if err != nil {
				return errors.WrapError(err, name, errors.ErrorTypeConfiguration)
			}
			if _, dup := graphs[g.ID]; dup && g.ID != def.ID {
				return errors.NewConfigurationError(fmt.Sprintf("%s: duplicate scenario id %q", name, g.ID), nil)
			}
			graphs[g.ID] = g
			l.logger.Info("scenario loaded", map[string]interface{}{
				"file":        name,
				"scenario_id": g.ID,
				"routes":      len(g.Routes),
			})
		}
	}

	l.mu.Lock()
	l.graphs = graphs
	l.mu.Unlock()
	return nil
}

// Get resolves a scenario by id; an empty id means the default
func (l *Library) Get(id string) (*models.Graph, error) {
	if id == "" {
		id = DefaultScenarioID
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.graphs[id]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("scenario %q not found", id), nil).WithCode("SCENARIO_NOT_FOUND")
	}
	return g, nil
}

// List returns summaries sorted by id
func (l *Library) List() []Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Summary, 0, len(l.graphs))
	for _, g := range l.graphs {
		out = append(out, Summarize(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
