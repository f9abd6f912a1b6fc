// Package tactic implements define-tactically: a proof state holding a tree
// of goals, the tactics that refine it, and extraction of the finished proof
// term.
package tactic

import (
	"fmt"
	"strings"

	"github.com/vito/pie/pkg/check"
	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// Goal is an open obligation: a type to inhabit in a context.
type Goal struct {
	ID       int
	Type     core.Value
	Ctx      core.Context
	Renaming *check.Renaming
}

func (g Goal) String() string {
	var sb strings.Builder
	for _, e := range g.Ctx.Entries() {
		if _, ok := e.Binder.(*core.Free); ok {
			fmt.Fprintf(&sb, "  %s : %s\n", e.Name, check.Show(g.Ctx, e.Binder.Type()))
		}
	}
	fmt.Fprintf(&sb, "  ----\n  %s", check.Show(g.Ctx, g.Type))
	return sb.String()
}

// NodeID indexes a GoalNode in its ProofState.
type NodeID int

const noParent NodeID = -1

// GoalNode is one goal of the proof tree. A node is complete when it has a
// term of its own, or when it has a term builder and all of its children
// are complete.
type GoalNode struct {
	Goal     Goal
	Parent   NodeID
	Children []NodeID
	Term     core.Core
	Build    func([]core.Core) core.Core
	Tactic   syntax.Tactic
}

// ProofState is the goal tree of one define-tactically, stored as an arena
// so that parents and children refer to each other by index.
type ProofState struct {
	nodes []GoalNode
	// pending lists the incomplete leaves, left to right. The first one is
	// the current goal.
	pending []NodeID
	// pendingBranches counts the children of the last branching tactic that
	// still need a then block.
	pendingBranches int
	nextGoalID      int
}

// NewProofState starts a proof of t in ctx.
func NewProofState(ctx core.Context, t core.Value) *ProofState {
	ps := &ProofState{}
	root := ps.newNode(noParent, ctx, nil, t)
	ps.pending = []NodeID{root}
	return ps
}

func (ps *ProofState) newNode(parent NodeID, ctx core.Context, r *check.Renaming, t core.Value) NodeID {
	ps.nextGoalID++
	ps.nodes = append(ps.nodes, GoalNode{
		Goal:   Goal{ID: ps.nextGoalID, Type: t, Ctx: ctx, Renaming: r},
		Parent: parent,
	})
	return NodeID(len(ps.nodes) - 1)
}

// Node returns the node with the given id.
func (ps *ProofState) Node(id NodeID) *GoalNode {
	return &ps.nodes[id]
}

// Root is the node for the whole proof.
func (ps *ProofState) Root() NodeID {
	return 0
}

// Current returns the left-most incomplete goal.
func (ps *ProofState) Current() (NodeID, bool) {
	if len(ps.pending) == 0 {
		return 0, false
	}
	return ps.pending[0], true
}

// Goals lists the open goals, left to right.
func (ps *ProofState) Goals() []Goal {
	goals := make([]Goal, len(ps.pending))
	for i, id := range ps.pending {
		goals[i] = ps.nodes[id].Goal
	}
	return goals
}

// PendingBranches is the number of then blocks still owed.
func (ps *ProofState) PendingBranches() int {
	return ps.pendingBranches
}

// IsComplete reports whether the subtree rooted at id has a term.
func (ps *ProofState) IsComplete(id NodeID) bool {
	n := &ps.nodes[id]
	if n.Term != nil {
		return true
	}
	if n.Build == nil {
		return false
	}
	for _, c := range n.Children {
		if !ps.IsComplete(c) {
			return false
		}
	}
	return true
}

// Complete reports whether the whole proof is done.
func (ps *ProofState) Complete() bool {
	return ps.IsComplete(ps.Root())
}

// solve gives the current goal a term and moves on to the next one.
func (ps *ProofState) solve(id NodeID, term core.Core) {
	ps.nodes[id].Term = term
	ps.pending = ps.pending[1:]
}

// refine replaces the current goal with children whose terms build.
func (ps *ProofState) refine(id NodeID, tac syntax.Tactic, build func([]core.Core) core.Core, goals ...childGoal) []NodeID {
	children := make([]NodeID, len(goals))
	for i, g := range goals {
		children[i] = ps.newNode(id, g.ctx, g.renaming, g.t)
	}
	n := &ps.nodes[id]
	n.Children = children
	n.Build = build
	n.Tactic = tac
	ps.pending = append(append([]NodeID{}, children...), ps.pending[1:]...)
	return children
}

type childGoal struct {
	ctx      core.Context
	renaming *check.Renaming
	t        core.Value
}

// Extract folds the finished tree into one term.
func (ps *ProofState) Extract() (core.Core, error) {
	return ps.extract(ps.Root())
}

func (ps *ProofState) extract(id NodeID) (core.Core, error) {
	n := &ps.nodes[id]
	if n.Term != nil {
		return n.Term, nil
	}
	if n.Build == nil {
		return nil, fmt.Errorf("goal %d is not solved:\n%s", n.Goal.ID, n.Goal)
	}
	terms := make([]core.Core, len(n.Children))
	for i, c := range n.Children {
		t, err := ps.extract(c)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return n.Build(terms), nil
}
