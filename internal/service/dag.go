// Package service contains the orchestration core: the dependency plan
// over the agent graph, retry and rate-limit policy around the model
// client, the refinement loop and the score mapping that folds the
// finished analysis state into a qualification result.
package service

import (
	"sort"

	"github.com/callscore-ai/callscore/internal/core"
)

// PlanBuilder constructs the agent dependency graph and validates it
// into an executable plan. The graph is data: the pipeline schedules
// from the plan instead of hard-coding agent order.
type PlanBuilder struct {
	nodes   map[core.Role]bool
	edges   map[core.Role][]core.Role // role -> dependencies
	reverse map[core.Role][]core.Role // role -> dependents
}

// NewPlanBuilder creates an empty plan builder.
func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{
		nodes:   make(map[core.Role]bool),
		edges:   make(map[core.Role][]core.Role),
		reverse: make(map[core.Role][]core.Role),
	}
}

// AddNode registers a role in the graph.
func (b *PlanBuilder) AddNode(role core.Role) error {
	if b.nodes[role] {
		return core.ErrValidation("DUPLICATE_NODE", "role "+string(role)+" already registered")
	}
	b.nodes[role] = true
	b.edges[role] = make([]core.Role, 0)
	b.reverse[role] = make([]core.Role, 0)
	return nil
}

// AddDependency declares that from depends on to.
func (b *PlanBuilder) AddDependency(from, to core.Role) error {
	if !b.nodes[from] {
		return core.ErrValidation("UNKNOWN_NODE", "role "+string(from)+" not registered")
	}
	if !b.nodes[to] {
		return core.ErrValidation("UNKNOWN_NODE", "role "+string(to)+" not registered")
	}
	for _, dep := range b.edges[from] {
		if dep == to {
			return nil
		}
	}
	b.edges[from] = append(b.edges[from], to)
	b.reverse[to] = append(b.reverse[to], from)
	return nil
}

// Plan is a validated execution plan: a topological order, parallel
// levels and the dependency map.
type Plan struct {
	Order        []core.Role
	Levels       [][]core.Role
	Dependencies map[core.Role][]core.Role

	reverse map[core.Role][]core.Role
}

// Build validates the graph and returns the plan.
func (b *PlanBuilder) Build() (*Plan, error) {
	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}

	return &Plan{
		Order:        order,
		Levels:       b.calculateLevels(),
		Dependencies: b.copyEdges(b.edges),
		reverse:      b.copyEdges(b.reverse),
	}, nil
}

// topologicalSort orders roles with Kahn's algorithm. A cycle leaves
// unprocessed nodes behind, which is the cycle check.
func (b *PlanBuilder) topologicalSort() ([]core.Role, error) {
	inDegree := make(map[core.Role]int)
	for role := range b.nodes {
		inDegree[role] = len(b.edges[role])
	}

	queue := make([]core.Role, 0)
	for role, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, role)
		}
	}
	sortRoles(queue)

	result := make([]core.Role, 0, len(b.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		freed := make([]core.Role, 0)
		for _, dependent := range b.reverse[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sortRoles(freed)
		queue = append(queue, freed...)
	}

	if len(result) != len(b.nodes) {
		return nil, core.ErrValidation(core.CodeGraphCycle, "agent dependency graph contains a cycle")
	}
	return result, nil
}

// calculateLevels groups roles into levels whose members have no
// dependencies on each other and may run concurrently.
func (b *PlanBuilder) calculateLevels() [][]core.Role {
	if len(b.nodes) == 0 {
		return nil
	}

	levels := make([][]core.Role, 0)
	assigned := make(map[core.Role]bool)

	for len(assigned) < len(b.nodes) {
		level := make([]core.Role, 0)
		for role := range b.nodes {
			if assigned[role] {
				continue
			}
			ready := true
			for _, dep := range b.edges[role] {
				if !assigned[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, role)
			}
		}
		sortRoles(level)
		for _, role := range level {
			assigned[role] = true
		}
		levels = append(levels, level)
	}
	return levels
}

func (b *PlanBuilder) copyEdges(src map[core.Role][]core.Role) map[core.Role][]core.Role {
	out := make(map[core.Role][]core.Role, len(src))
	for role, deps := range src {
		out[role] = append([]core.Role{}, deps...)
	}
	return out
}

// Dependents returns the transitive dependents of the given roles, the
// given roles included. This is the re-run set of a refinement pass: an
// agent whose input changed must run again.
func (p *Plan) Dependents(roles []core.Role) []core.Role {
	include := make(map[core.Role]bool)
	var mark func(role core.Role)
	mark = func(role core.Role) {
		if include[role] {
			return
		}
		include[role] = true
		for _, dependent := range p.reverse[role] {
			mark(dependent)
		}
	}
	for _, role := range roles {
		mark(role)
	}

	// Preserve topological order for the re-run.
	out := make([]core.Role, 0, len(include))
	for _, role := range p.Order {
		if include[role] {
			out = append(out, role)
		}
	}
	return out
}

// SubLevels filters the parallel levels down to the given roles.
func (p *Plan) SubLevels(roles []core.Role) [][]core.Role {
	include := make(map[core.Role]bool, len(roles))
	for _, role := range roles {
		include[role] = true
	}
	out := make([][]core.Role, 0, len(p.Levels))
	for _, level := range p.Levels {
		filtered := make([]core.Role, 0, len(level))
		for _, role := range level {
			if include[role] {
				filtered = append(filtered, role)
			}
		}
		if len(filtered) > 0 {
			out = append(out, filtered)
		}
	}
	return out
}

func sortRoles(roles []core.Role) {
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
}
