package dimacs

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const maxLineSize = 16 << 20

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// parseHeader parses the fields of a "p" line.
func parseHeader(fields []string) (h Header, err error) {
	if len(fields) < 4 || fields[0] != "p" {
		return h, errors.Errorf("invalid syntax %q in header", strings.Join(fields, " "))
	}
	h.Format = fields[1]
	switch h.Format {
	case "cnf":
	case "wcnf":
		if len(fields) < 5 {
			return h, errors.Errorf("no top weight in wcnf header %q", strings.Join(fields, " "))
		}
		if h.Top, err = strconv.Atoi(fields[4]); err != nil {
			return h, errors.Errorf("top weight not an int: %q", fields[4])
		}
	default:
		return h, errors.Errorf("unknown format %q in header", h.Format)
	}
	if h.NbVars, err = strconv.Atoi(fields[2]); err != nil {
		return h, errors.Errorf("nbvars not an int: %q", fields[2])
	}
	if h.NbClauses, err = strconv.Atoi(fields[3]); err != nil {
		return h, errors.Errorf("nbClauses not an int: %q", fields[3])
	}
	return h, nil
}

// ParseHeader reads r until it finds the header line, and returns it.
// Comments before the header are ignored.
func ParseHeader(r io.Reader) (Header, error) {
	sc := newScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "c") {
			continue
		}
		return parseHeader(fields)
	}
	if err := sc.Err(); err != nil {
		return Header{}, errors.Wrap(err, "could not read header")
	}
	return Header{}, errors.New("no header found")
}

// parseClause parses the fields of a clause line. The terminating 0 is mandatory.
func parseClause(fields []string, nbVars int) ([]int, error) {
	clause := make([]int, 0, len(fields)-1)
	for j, field := range fields {
		val, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Errorf("invalid integer %q in clause %q", field, strings.Join(fields, " "))
		}
		if val == 0 {
			if j != len(fields)-1 {
				return nil, errors.Errorf("null literal before the end of clause %q", strings.Join(fields, " "))
			}
			return clause, nil
		}
		if val > nbVars || -val > nbVars {
			return nil, errors.Errorf("invalid literal %d for problem with %d vars only", val, nbVars)
		}
		clause = append(clause, val)
	}
	return nil, errors.Errorf("unfinished clause %q", strings.Join(fields, " "))
}

// Parse parses a CNF or WCNF file.
// In a WCNF file, clauses whose weight is at least the top weight are hard, others are soft.
// The number of clauses read must match the header.
func Parse(r io.Reader) (*Problem, error) {
	sc := newScanner(r)
	var (
		pb     *Problem
		header Header
		nb     int
	)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "c") {
			continue
		}
		if fields[0] == "p" {
			if pb != nil {
				return nil, errors.New("duplicate header")
			}
			h, err := parseHeader(fields)
			if err != nil {
				return nil, errors.Wrap(err, "cannot parse header")
			}
			header = h
			pb = &Problem{NbVars: h.NbVars, Weighted: h.Format == "wcnf"}
			continue
		}
		if pb == nil {
			return nil, errors.New("clause found before header")
		}
		weight := 0
		if pb.Weighted {
			w, err := strconv.Atoi(fields[0])
			if err != nil || w < 1 {
				return nil, errors.Errorf("invalid weight %q in clause %q", fields[0], sc.Text())
			}
			weight = w
			fields = fields[1:]
		}
		clause, err := parseClause(fields, pb.NbVars)
		if err != nil {
			return nil, errors.Wrap(err, "cannot parse clause")
		}
		nb++
		if pb.Weighted && weight < header.Top {
			pb.Soft = append(pb.Soft, clause)
			pb.Weights = append(pb.Weights, weight)
		} else {
			pb.Clauses = append(pb.Clauses, clause)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read clauses")
	}
	if pb == nil {
		return nil, errors.New("no header found")
	}
	if nb != header.NbClauses {
		return nil, errors.Errorf("header announces %d clauses, found %d", header.NbClauses, nb)
	}
	return pb, nil
}
