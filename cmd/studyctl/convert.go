package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"exposure-platform/internal/services"
)

func newConvertCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "convert <family> <value> <from> <to>",
		Short: "Convert a value between units of one quantity family",
		Example: "  studyctl convert temperature 68 F C\n" +
			"  studyctl convert --list",
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(4)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				families := services.Families()
				names := make([]string, 0, len(families))
				for name := range families {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					fmt.Fprintf(out, "%-12s %s\n", name, strings.Join(families[name], " "))
				}
				return nil
			}

			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			conv, err := services.NewConvertService(nil).Convert(args[0], value, args[2], args[3])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, conv.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the unit symbols of every family")
	return cmd
}
