package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tindar/bitwidth/dag"
	"github.com/tindar/bitwidth/dag/eval"
	"github.com/tindar/bitwidth/dag/lower"
	"github.com/tindar/bitwidth/serde"
)

func newEvalCmd() *cobra.Command {
	var radix int

	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Build a small Op-DAG from an expression and evaluate it",
		Long: "Operands are self-describing bit literals (e.g. 5_u8); supported\n" +
			"operators are + - * & | ^ ~ (bitwise/arithmetic) and the single\n" +
			"outermost comparison == != < <= (always yielding a 1-bit result).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch radix {
			case 2, 8, 10, 16:
			default:
				return errors.Errorf("bwctl eval: unsupported radix %d (want 2, 8, 10, or 16)", radix)
			}

			e := dag.PushEpoch()
			defer dag.PopEpoch(e)

			root, err := ParseExpr(args[0])
			if err != nil {
				return errors.Wrap(err, "bwctl eval")
			}

			id, err := lower.Lower(e.Arena, root.ID())
			if err != nil {
				return errors.Wrap(err, "bwctl eval")
			}

			res := eval.Evaluate(e.Arena, id)
			switch res.Kind {
			case eval.Valid:
				fmt.Fprintln(cmd.OutOrStdout(), serde.Format(res.Value, radix, false, 0))
				return nil
			case eval.Unevaluatable, eval.PassUnevaluatable:
				return errors.New("bwctl eval: expression is not evaluable (contains an opaque value)")
			case eval.EvalErrorKind:
				return errors.Wrap(res.Err, "bwctl eval")
			default:
				return errors.Errorf("bwctl eval: unexpected result kind %d", res.Kind)
			}
		},
	}
	cmd.Flags().IntVar(&radix, "radix", 16, "output radix: 2, 8, 10, or 16")
	return cmd
}
