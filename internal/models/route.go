// internal/models/route.go
package models

import (
	"errors"
	"fmt"
)

// MaxNestingDepth bounds how deep mixed steps may nest
const MaxNestingDepth = 8

// ErrInvalidGraph is wrapped by every validation failure of a graph
var ErrInvalidGraph = errors.New("invalid content graph")

// Route is an ordered, non-empty list of steps
type Route struct {
	ID    string `json:"id" yaml:"id"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Last returns the index of the final step
func (r Route) Last() int {
	return len(r.Steps) - 1
}

// Graph is one authored scenario: its routes plus the entry route
type Graph struct {
	ID           string  `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	Intro        string  `json:"intro" yaml:"intro"`
	Setting      string  `json:"setting" yaml:"setting"`
	InitialRoute string  `json:"initial_route" yaml:"initialRoute"`
	Routes       []Route `json:"routes" yaml:"routes"`

	index map[string]int
}

// Route resolves a route by id
func (g *Graph) Route(id string) (*Route, bool) {
	if g.index == nil {
		g.buildIndex()
	}
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Routes[i], true
}

// RouteIDs returns route ids in authored order
func (g *Graph) RouteIDs() []string {
	ids := make([]string, 0, len(g.Routes))
	for _, r := range g.Routes {
		ids = append(ids, r.ID)
	}
	return ids
}

func (g *Graph) buildIndex() {
	g.index = make(map[string]int, len(g.Routes))
	for i, r := range g.Routes {
		if _, dup := g.index[r.ID]; !dup {
			g.index[r.ID] = i
		}
	}
}

// Validate checks every structural rule of the graph and returns all
// problems at once. It also builds the lookup index.
func (g *Graph) Validate() error {
	var problems []error
	fail := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidGraph}, args...)...))
	}

	if g.ID == "" {
		fail("scenario id is empty")
	}
	if len(g.Routes) == 0 {
		fail("scenario %q has no routes", g.ID)
	}

	seen := make(map[string]bool, len(g.Routes))
	for _, r := range g.Routes {
		if r.ID == "" {
			fail("route with empty id")
			continue
		}
		if seen[r.ID] {
			fail("duplicate route %q", r.ID)
		}
		seen[r.ID] = true
		if len(r.Steps) == 0 {
			fail("route %q has no steps", r.ID)
		}
	}

	if g.InitialRoute == "" {
		fail("initial route is not set")
	} else if !seen[g.InitialRoute] {
		fail("initial route %q does not exist", g.InitialRoute)
	}

	type frame struct {
		route string
		path  string
		step  Step
		depth int
	}
	for _, r := range g.Routes {
		stack := make([]frame, 0, len(r.Steps))
		for i := len(r.Steps) - 1; i >= 0; i-- {
			stack = append(stack, frame{route: r.ID, path: fmt.Sprintf("%s[%d]", r.ID, i), step: r.Steps[i]})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !f.step.Type.Known() {
				fail("%s: unknown step type %q", f.path, f.step.Type)
				continue
			}
			if f.step.Content == nil {
				fail("%s: %s step has no content", f.path, f.step.Type)
				continue
			}
			if f.step.Content.StepType() != f.step.Type {
				fail("%s: content of kind %s does not match step type %s", f.path, f.step.Content.StepType(), f.step.Type)
			}

			switch c := f.step.Content.(type) {
			case TransitionContent:
				if len(c.Options) == 0 {
					fail("%s: transition has no options", f.path)
				}
				for _, opt := range c.Options {
					if !seen[opt.ID] {
						fail("%s: option %q targets a route that does not exist", f.path, opt.ID)
					}
				}
			case MixedContent:
				if f.depth+1 > MaxNestingDepth {
					fail("%s: mixed steps nest deeper than %d", f.path, MaxNestingDepth)
					continue
				}
				for i := len(c.Steps) - 1; i >= 0; i-- {
					stack = append(stack, frame{
						route: f.route,
						path:  fmt.Sprintf("%s.steps[%d]", f.path, i),
						step:  c.Steps[i],
						depth: f.depth + 1,
					})
				}
			case ExplosionContent:
				if c.Threat.Kind != "" && c.Threat.Kind != NotificationThreat {
					fail("%s: threat has kind %q", f.path, c.Threat.Kind)
				}
			}
		}
	}

	g.buildIndex()
	return errors.Join(problems...)
}
