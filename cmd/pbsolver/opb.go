package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crillab/gopb/pb"
	"github.com/crillab/gopb/sat"
)

// opbProblem is what parseOPB extracts from an OPB-format file: enough to
// allocate a host solver and internalize every atom found. Objective
// ("min:") lines are recognized but not acted on; the module does no
// optimization.
type opbProblem struct {
	nbVars int
	atoms  []pb.Atom
}

// parseOPB reads the OPB pseudo-Boolean format (see
// http://www.cril.univ-artois.fr/PB16/format.pdf), adapted from
// gophersat's solver/parser_pb.go to build pb.Atom values instead of that
// package's own PBConstr/Problem types.
func parseOPB(r io.Reader) (*opbProblem, error) {
	scanner := bufio.NewScanner(r)
	p := &opbProblem{}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '*' {
			continue
		}
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("opb: %w", err)
	}
	return p, nil
}

func (p *opbProblem) parseLine(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if trimmed[len(trimmed)-1] != ';' {
		return fmt.Errorf("opb: line %q does not end with ';'", line)
	}
	fields := strings.Fields(trimmed[:len(trimmed)-1])
	if len(fields) == 0 {
		return fmt.Errorf("opb: empty constraint line")
	}
	if fields[0] == "min:" {
		return nil // objective: parsed for syntax, not acted on
	}
	return p.parseConstraint(fields, line)
}

func (p *opbProblem) parseConstraint(fields []string, line string) error {
	if len(fields) < 3 {
		return fmt.Errorf("opb: invalid constraint %q", line)
	}
	operator := fields[len(fields)-2]
	if operator != ">=" && operator != "=" {
		return fmt.Errorf("opb: unsupported operator %q in %q", operator, line)
	}
	rhs, ok := pb.ParseCoeff(fields[len(fields)-1])
	if !ok {
		return fmt.Errorf("opb: invalid rhs %q", fields[len(fields)-1])
	}
	terms, err := p.parseTerms(fields[:len(fields)-2], line)
	if err != nil {
		return err
	}
	p.atoms = append(p.atoms, pb.Atom{Cmp: pb.GE, Terms: terms, K: rhs})
	if operator == "=" {
		// x = k  is  x >= k  AND  x <= k, the latter expressed by
		// negating every coefficient (spec.md §4.A step 2 handles the
		// resulting sign flip during canonicalization).
		negated := make([]pb.RawTerm, len(terms))
		for i, t := range terms {
			negated[i] = t.Neg()
		}
		p.atoms = append(p.atoms, pb.Atom{Cmp: pb.GE, Terms: negated, K: rhs.Neg()})
	}
	return nil
}

func (p *opbProblem) parseTerms(fields []string, line string) ([]pb.RawTerm, error) {
	var terms []pb.RawTerm
	i := 0
	for i < len(fields) {
		weight := pb.One()
		tok := fields[i]
		if w, ok := pb.ParseCoeff(tok); ok {
			weight = w
			i++
			if i >= len(fields) {
				return nil, fmt.Errorf("opb: dangling weight in %q", line)
			}
			tok = fields[i]
		}
		negated := strings.HasPrefix(tok, "~x")
		var name string
		switch {
		case negated:
			name = tok[2:]
		case strings.HasPrefix(tok, "x"):
			name = tok[1:]
		default:
			return nil, fmt.Errorf("opb: invalid variable token %q in %q", tok, line)
		}
		n, err := strconv.Atoi(name)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("opb: invalid variable name %q in %q", tok, line)
		}
		if n > p.nbVars {
			p.nbVars = n
		}
		l := sat.Var(n - 1).SignedLit(negated)
		terms = append(terms, pb.RawTerm{Coeff: weight, Lit: l})
		i++
	}
	return terms, nil
}
