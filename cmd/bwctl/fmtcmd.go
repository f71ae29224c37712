package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tindar/bitwidth/serde"
)

func newFmtCmd() *cobra.Command {
	var radix int
	var signed bool
	var fracBits int

	cmd := &cobra.Command{
		Use:   "fmt <literal>",
		Short: "Parse a self-describing bit literal and reformat it",
		Long: "Parse a literal like 123_u32 or 0xff_i16_f4 and print it back\n" +
			"in the requested radix, signedness, and fixed-point split.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch radix {
			case 2, 8, 10, 16:
			default:
				return errors.Errorf("bwctl fmt: unsupported radix %d (want 2, 8, 10, or 16)", radix)
			}
			a, err := serde.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "bwctl fmt")
			}
			fmt.Fprintln(cmd.OutOrStdout(), serde.Format(a.Bits(), radix, signed, fracBits))
			return nil
		},
	}
	cmd.Flags().IntVar(&radix, "radix", 16, "output radix: 2, 8, 10, or 16")
	cmd.Flags().BoolVar(&signed, "signed", false, "render with a sign and an _iN suffix")
	cmd.Flags().IntVar(&fracBits, "frac", 0, "treat the low N bits as a fixed-point fraction")
	return cmd
}
