package learner

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/crillab/gophersat/explain"
	"github.com/pkg/errors"

	"github.com/crillab/ncsort/clause"
	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/ncs"
)

// Explain returns the examples whose ceiling or floor clauses belong to an unsatisfiable
// subset of the hard clauses of f, sorted by category then index.
// The subset is not guaranteed to be minimal.
func Explain(f *clause.Formula) ([]ncs.ExampleRef, error) {
	var buf bytes.Buffer
	if err := dimacs.Write(&buf, &dimacs.Problem{NbVars: f.Problem.NbVars, Clauses: f.Problem.Clauses}); err != nil {
		return nil, err
	}
	pb, err := explain.ParseCNF(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse instance")
	}
	subset, err := pb.UnsatSubset()
	if err != nil {
		return nil, errors.Wrap(err, "could not extract unsatisfiable subset")
	}
	origins := make(map[string][]int, len(f.Origins))
	for j, o := range f.Origins {
		if o.HasExample() {
			key := clauseKey(f.Problem.Clauses[j])
			origins[key] = append(origins[key], j)
		}
	}
	seen := make(map[ncs.ExampleRef]bool)
	var refs []ncs.ExampleRef
	for _, cl := range subset.Clauses {
		for _, j := range origins[clauseKey(cl)] {
			ref := f.Origins[j].Example
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Category != refs[j].Category {
			return refs[i].Category < refs[j].Category
		}
		return refs[i].Index < refs[j].Index
	})
	return refs, nil
}

// clauseKey identifies a clause whatever the order of its literals.
func clauseKey(cl []int) string {
	lits := append([]int(nil), cl...)
	sort.Ints(lits)
	strs := make([]string, len(lits))
	for i, lit := range lits {
		strs[i] = strconv.Itoa(lit)
	}
	return strings.Join(strs, " ")
}
