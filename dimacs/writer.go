package dimacs

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Write writes pb to w, in the CNF format if pb is not weighted, in the WCNF format else.
// Any line of comment is written first, prefixed by "c ".
func Write(w io.Writer, pb *Problem, comments ...string) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for _, comment := range comments {
		buf = append(buf[:0], "c "...)
		buf = append(buf, comment...)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return errors.Wrap(err, "could not write comment")
		}
	}
	h := pb.Header()
	buf = append(buf[:0], "p "...)
	buf = append(buf, h.Format...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(h.NbVars), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(h.NbClauses), 10)
	if pb.Weighted {
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(h.Top), 10)
	}
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return errors.Wrap(err, "could not write header")
	}
	for _, clause := range pb.Clauses {
		if err := writeClause(bw, &buf, pb.Weighted, h.Top, clause); err != nil {
			return err
		}
	}
	if pb.Weighted {
		for i, clause := range pb.Soft {
			if err := writeClause(bw, &buf, true, pb.Weight(i), clause); err != nil {
				return err
			}
		}
	}
	return errors.Wrap(bw.Flush(), "could not flush clauses")
}

func writeClause(w *bufio.Writer, buf *[]byte, weighted bool, weight int, clause []int) error {
	b := (*buf)[:0]
	if weighted {
		b = strconv.AppendInt(b, int64(weight), 10)
		b = append(b, ' ')
	}
	for _, lit := range clause {
		b = strconv.AppendInt(b, int64(lit), 10)
		b = append(b, ' ')
	}
	b = append(b, '0', '\n')
	*buf = b
	_, err := w.Write(b)
	return errors.Wrap(err, "could not write clause")
}
