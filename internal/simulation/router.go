// internal/simulation/router.go
package simulation

import (
	"errors"
	"fmt"

	apperrors "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
)

// ErrRouteNotFound is wrapped when a route id does not resolve
var ErrRouteNotFound = errors.New("route not found")

// RouteNotFoundCode is the API code of an unresolved route
const RouteNotFoundCode = "ROUTE_NOT_FOUND"

// Router resolves route ids against a whole graph
type Router struct {
	graph *models.Graph
}

func NewRouter(graph *models.Graph) *Router {
	return &Router{graph: graph}
}

// Graph returns the graph routes are resolved against
func (r *Router) Graph() *models.Graph {
	return r.graph
}

// Resolve looks up a route by id. A miss is a configuration error.
func (r *Router) Resolve(id string) (*models.Route, error) {
	route, ok := r.graph.Route(id)
	if !ok || len(route.Steps) == 0 {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("scenario %q has no route %q", r.graph.ID, id),
			fmt.Errorf("%w: %s", ErrRouteNotFound, id),
		).WithCode(RouteNotFoundCode)
	}
	return route, nil
}

// Initial resolves the entry route of the graph
func (r *Router) Initial() (*models.Route, error) {
	return r.Resolve(r.graph.InitialRoute)
}
