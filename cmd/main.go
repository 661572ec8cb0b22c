package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pireduce/pkg/reduce"
	"pireduce/pkg/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		inputNode  string
		loadNode   string
		model      string
		doVerify   bool
		points     int
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:          "pireduce [flags] <input.sp> <output.sp>",
		Short:        "pireduce — reduce an RC interconnect netlist to a lumped equivalent model",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			opts := reduce.Options{Model: reduce.ModelKind(model)}
			if configPath != "" {
				loaded, err := reduce.LoadOptions(configPath)
				if err != nil {
					return err
				}
				opts = loaded
			}
			if inputNode != "" {
				opts.InputNode = inputNode
			}
			if loadNode != "" {
				opts.LoadNode = loadNode
			}
			if doVerify {
				opts.Verify = true
			}
			if points > 0 {
				opts.VerifyPoints = points
			}

			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			result, err := reduce.RunFile(args[0], args[1], opts)
			if err != nil {
				return err
			}

			printResult(result)
			fmt.Printf("\nReduced netlist written to %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&inputNode, "input-node", "", "driven input node (default: inferred from the driving source)")
	cmd.Flags().StringVar(&loadNode, "load-node", "", "output load node (default: the unique leaf)")
	cmd.Flags().StringVar(&model, "model", string(reduce.ModelPI), "equivalent model kind: pi, double-pi or lumped")
	cmd.Flags().BoolVar(&doVerify, "verify", false, "cross-check the model admittance against the original network")
	cmd.Flags().IntVar(&points, "points", 0, "verification sweep points")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML options file (flags override it)")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug logging to stderr")

	return cmd
}

func printResult(r *reduce.Result) {
	fmt.Println("Driving-Point Moments:")
	fmt.Println("======================")
	fmt.Printf("m0 = %g F   (total capacitance)\n", r.Moments.M0)
	fmt.Printf("m1 = %g\n", r.Moments.M1)
	fmt.Printf("m2 = %g\n", r.Moments.M2)
	fmt.Printf("m3 = %g\n", r.Moments.M3)
	fmt.Printf("input node: %s, load node: %s\n", r.InputNode, r.LoadNode)

	switch {
	case r.PI != nil:
		fmt.Println("\nPI Model:")
		fmt.Printf("R1 = %s\n", util.FormatValueFactor(r.PI.R1, "Ohm"))
		fmt.Printf("C1 = %s\n", util.FormatValueFactor(r.PI.C1, "F"))
		fmt.Printf("C2 = %s\n", util.FormatValueFactor(r.PI.C2, "F"))
		fmt.Printf("third-moment fit error = %.3g\n", r.FitError)

	case r.DoublePI != nil:
		fmt.Println("\nDouble-PI Model:")
		fmt.Printf("R1 = %s\n", util.FormatValueFactor(r.DoublePI.R1, "Ohm"))
		fmt.Printf("R2 = %s\n", util.FormatValueFactor(r.DoublePI.R2, "Ohm"))
		fmt.Printf("C1 = %s\n", util.FormatValueFactor(r.DoublePI.C1, "F"))
		fmt.Printf("C2 = %s\n", util.FormatValueFactor(r.DoublePI.C2, "F"))
		fmt.Printf("C3 = %s\n", util.FormatValueFactor(r.DoublePI.C3, "F"))

	case r.Lumped != nil:
		fmt.Println("\nLumped RC Model:")
		fmt.Printf("Req = %s\n", util.FormatValueFactor(r.Lumped.Req, "Ohm"))
		fmt.Printf("Ceq = %s\n", util.FormatValueFactor(r.Lumped.Ceq, "F"))
	}

	if r.Verification != nil {
		fmt.Printf("\nVerification: %d frequency points, max relative admittance error = %.3g\n",
			len(r.Verification.Samples), r.Verification.MaxRelErr)
	}
}
