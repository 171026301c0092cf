package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wippyai/anycodec/dynany"
	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/typecode"
	"github.com/wippyai/anycodec/witimport"
)

// NewPrintCommand creates the print command.
func NewPrintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "print <descriptor>",
		Short: "Parse a type descriptor and print its canonical form",
		Long: `Parse a type descriptor, or the name of a type from the configuration,
and print it back in canonical form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.session()
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.Print(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// NewPackCommand creates the pack command.
func NewPackCommand(rootOpts *RootOptions) *cobra.Command {
	var showType bool

	cmd := &cobra.Command{
		Use:   "pack <value> <descriptor>",
		Short: "Pack a value against a descriptor and show its extraction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.session()
			if err != nil {
				return err
			}
			defer s.Close()

			v, err := s.PackText(args[0], args[1])
			if err != nil {
				return err
			}
			text, err := s.ExtractText(v)
			if err != nil {
				return err
			}
			if showType {
				fmt.Fprintln(cmd.OutOrStdout(), typecode.Describe(v.Type))
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the descriptor of the packed value first")
	return cmd
}

// NewRoundtripCommand creates the roundtrip command.
func NewRoundtripCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <value> <descriptor>",
		Short: "Pack, extract and pack again, checking that the values agree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.session()
			if err != nil {
				return err
			}
			defer s.Close()

			first, err := s.PackText(args[0], args[1])
			if err != nil {
				return err
			}
			text, err := s.Roundtrip(args[0], args[1])
			if err != nil {
				return err
			}
			second, err := s.PackText(text, args[1])
			if err != nil {
				return err
			}
			if !dynany.Equal(first, second) {
				return errors.New(errors.PhasePack, errors.KindInvalidData).
					Detail("%q does not pack to the same value as %q", text, args[0]).
					Build()
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

// NewWitCommand creates the wit command.
func NewWitCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "wit [primitive]",
		Short: "Show descriptors for WIT types",
		Long: `Show the descriptor of every named type in a WIT JSON file, or of a
single WIT primitive type given by name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if file != "" {
				types, err := witimport.LoadFile(file)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(types))
				for name := range types {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "%s\t%s\n", name, typecode.Describe(types[name]))
				}
				return nil
			}
			if len(args) == 0 {
				return errors.InvalidInput(errors.PhaseLoad, "a primitive name or --file is required")
			}
			tc, err := witimport.ParseType(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, typecode.Describe(tc))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "WIT JSON file")
	return cmd
}
