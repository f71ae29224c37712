package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tindar/bitwidth/bits"
	"github.com/tindar/bitwidth/concat"
	"github.com/tindar/bitwidth/digit"
	"github.com/tindar/bitwidth/serde"
)

func newConcatCmd() *cobra.Command {
	var operandFlags []string
	var radix int

	cmd := &cobra.Command{
		Use:   "concat <program>",
		Short: "Run a concatenation/bitfield program against literal operands",
		Long: "Each --op name=literal binds a named operand to a self-describing\n" +
			"bit literal (e.g. --op a=5_u8). <program> is a concat source string\n" +
			"such as \"a[0..4], 0xf:4\"; a single concatenation builds and prints\n" +
			"a value. With ';'-separated sinks (\"a, b; x, y\"), the first\n" +
			"concatenation is the source and later ones are named sinks: bound\n" +
			"--op operands that are sinks are mutated in place and reported\n" +
			"after the source's own constructed value.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch radix {
			case 2, 8, 10, 16:
			default:
				return errors.Errorf("bwctl concat: unsupported radix %d (want 2, 8, 10, or 16)", radix)
			}
			vars, widths, err := parseOperandFlags(operandFlags)
			if err != nil {
				return err
			}

			prog, err := concat.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "bwctl concat")
			}
			plan, err := concat.Compile(prog, widths)
			if err != nil {
				return errors.Wrap(err, "bwctl concat")
			}

			bufW := plan.Concats[0].TotalWidth
			buf := bits.NewBitsView(make([]digit.Digit, bits.DigitsForBits(bufW)), bufW)
			if err := plan.RunBits(buf, vars); err != nil {
				return errors.Wrap(err, "bwctl concat")
			}
			fmt.Fprintln(cmd.OutOrStdout(), serde.Format(buf, radix, false, 0))

			if len(plan.Concats) > 1 {
				for _, name := range sinkOperandNames(prog) {
					v, ok := vars[name]
					if !ok {
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, serde.Format(v, radix, false, 0))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&operandFlags, "op", nil, "bind an operand: name=literal (repeatable)")
	cmd.Flags().IntVar(&radix, "radix", 16, "output radix: 2, 8, 10, or 16")
	return cmd
}

// sinkOperandNames lists the named operands referenced by prog's sink
// concatenations (everything after the source), in first-seen order,
// so the caller can report what actually got mutated.
func sinkOperandNames(prog *concat.Program) []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range prog.Concats[1:] {
		for _, comp := range c.Components {
			if comp.Name == "" || seen[comp.Name] {
				continue
			}
			seen[comp.Name] = true
			names = append(names, comp.Name)
		}
	}
	return names
}

func parseOperandFlags(flags []string) (map[string]*bits.Bits, map[string]int, error) {
	vars := make(map[string]*bits.Bits, len(flags))
	widths := make(map[string]int, len(flags))
	for _, f := range flags {
		name, lit, ok := strings.Cut(f, "=")
		if !ok {
			return nil, nil, errors.Errorf("bwctl concat: malformed --op %q, want name=literal", f)
		}
		a, err := serde.Parse(lit)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bwctl concat: operand %q", name)
		}
		vars[name] = a.Bits()
		widths[name] = a.BW()
	}
	return vars, widths, nil
}
