// Package dimacs reads and writes clause files in the DIMACS CNF format and in its weighted WCNF variant.
//
// A clause is a line of space-separated, signed, 1-based variable identifiers ending with 0.
// CNF files start with a "p cnf <nbvars> <nbclauses>" header.
// WCNF files start with a "p wcnf <nbvars> <nbclauses> <top>" header, and each clause line is
// prefixed with its weight: top for hard clauses, a lower weight for soft ones.
// Lines starting with "c" are comments.
package dimacs

// A Problem is a set of hard clauses and, for weighted problems, a set of soft clauses.
type Problem struct {
	NbVars   int     // Total nb of vars
	Clauses  [][]int // Hard clauses
	Soft     [][]int // Soft clauses, only meaningful if Weighted is true
	Weights  []int   // Weight of each soft clause. If nil, all weights are 1.
	Weighted bool    // Whether the problem must be written as WCNF
}

// Weight returns the weight of the i-th soft clause.
func (pb *Problem) Weight(i int) int {
	if pb.Weights == nil {
		return 1
	}
	return pb.Weights[i]
}

// Top returns the weight of hard clauses: the sum of all soft weights, plus one.
// Violating a hard clause is thus always worse than violating every soft clause.
func (pb *Problem) Top() int {
	top := 1
	for i := range pb.Soft {
		top += pb.Weight(i)
	}
	return top
}

// NbClauses returns the number of clause lines in the file representation of pb.
func (pb *Problem) NbClauses() int {
	if pb.Weighted {
		return len(pb.Clauses) + len(pb.Soft)
	}
	return len(pb.Clauses)
}

// A Header is the "p" line of a clause file.
type Header struct {
	Format    string // "cnf" or "wcnf"
	NbVars    int
	NbClauses int
	Top       int // Only for wcnf
}

// Header returns the header describing pb.
func (pb *Problem) Header() Header {
	if pb.Weighted {
		return Header{Format: "wcnf", NbVars: pb.NbVars, NbClauses: pb.NbClauses(), Top: pb.Top()}
	}
	return Header{Format: "cnf", NbVars: pb.NbVars, NbClauses: pb.NbClauses()}
}

// Ext returns the file extension engines expect for pb: ".cnf" or ".wcnf".
func (pb *Problem) Ext() string {
	if pb.Weighted {
		return ".wcnf"
	}
	return ".cnf"
}
