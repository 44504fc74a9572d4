package classify

import (
	"context"

	"github.com/entrhq/stacks/pkg/category"
)

// ScriptedClassifier returns pre-programmed placements in order, for
// tests and offline runs. Once the script is exhausted it returns nil
// placements.
type ScriptedClassifier struct {
	Placements []*Placement
	Errs       []error
	Requests   []Request

	next int
}

func (s *ScriptedClassifier) Classify(_ context.Context, req Request) (*Placement, error) {
	s.Requests = append(s.Requests, req)
	i := s.next
	s.next++
	if i < len(s.Errs) && s.Errs[i] != nil {
		return nil, s.Errs[i]
	}
	if i < len(s.Placements) {
		return s.Placements[i], nil
	}
	return nil, nil
}

// ScriptedReorganizer returns one pre-programmed batch of ops.
type ScriptedReorganizer struct {
	Ops    []category.Op
	Err    error
	Called int
}

func (s *ScriptedReorganizer) ProposeReorganization(_ context.Context, _ []category.SnapshotNode, _ map[string]string) ([]category.Op, error) {
	s.Called++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Ops, nil
}

// ScriptedRanker returns a fixed ranking for every query.
type ScriptedRanker struct {
	Ranked  []RankedItem
	Err     error
	Queries []string
}

func (s *ScriptedRanker) Rank(_ context.Context, query string, _ []SearchItem) ([]RankedItem, error) {
	s.Queries = append(s.Queries, query)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Ranked, nil
}

var (
	_ Classifier  = (*ScriptedClassifier)(nil)
	_ Reorganizer = (*ScriptedReorganizer)(nil)
	_ Ranker      = (*ScriptedRanker)(nil)
)
