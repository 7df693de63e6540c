// Command pbsolver internalizes an OPB-format pseudo-Boolean problem and
// searches for a satisfying assignment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crillab/gopb/pb"
	"github.com/crillab/gopb/sat"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var conflictFrequency int

	root := &cobra.Command{
		Use:   "pbsolver [file.opb]",
		Short: "Internalize and solve a pseudo-Boolean problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := pb.DefaultConfig()
			cfg.Verbose = verbose
			cfg.ConflictFrequency = conflictFrequency
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(args[0], cfg)
		},
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "set pb.Config.Verbose (no trace output is printed)")
	root.Flags().IntVar(&conflictFrequency, "conflict-frequency", 0, "throttle full conflict analysis passes (0 disables throttling)")
	return root
}

func run(path string, cfg pb.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	problem, err := parseOPB(f)
	if err != nil {
		return err
	}

	host := sat.New(problem.nbVars)
	for host.NbVars() < problem.nbVars {
		host.NewVar()
	}
	plugin := pb.NewPlugin(host, cfg)
	host.RegisterTheory(plugin)

	for _, atom := range problem.atoms {
		govVar := host.NewVar()
		plugin.InternalizeAtom(atom, govVar.Lit())
		if !host.Enqueue(govVar.Lit(), sat.Axiom) {
			fmt.Println("s UNSATISFIABLE")
			return nil
		}
	}

	// Every constraint is asserted true unconditionally above; from here on
	// host.Solve() owns the search (decisions off the activity queue,
	// conflict-driven backjumping, Luby- and LBD-triggered restarts) the way
	// spec.md §1 assumes an "external search" sits above the theory plugin.
	switch host.Solve() {
	case sat.Unsat:
		fmt.Println("s UNSATISFIABLE")
	case sat.Sat:
		fmt.Println("s SATISFIABLE")
	}

	fmt.Printf("c constraints internalized: %d\n", plugin.Stats.ConstraintsCreated)
	fmt.Printf("c decisions: %d\n", host.Stats.NbDecisions)
	fmt.Printf("c conflicts: %d\n", host.Stats.NbConflicts)
	fmt.Printf("c restarts: %d\n", host.Stats.NbRestarts)
	fmt.Printf("c propagations: %d\n", plugin.Stats.Propagations)
	return nil
}
