package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/tour-ops-dashboard/internal/recap"
)

func policiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Inspect participant policy files",
	}
	cmd.AddCommand(policiesCheckCmd())
	return cmd
}

func policiesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a policy file and print what each activity counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the server treats a missing file as "no policies"; here it is a mistake
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			policies, err := recap.LoadPolicies(args[0])
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(policies))
			for id := range policies {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintf(out, "%s\t%s\n", id, describePolicy(policies[id]))
			}
			fmt.Fprintf(out, "%d activities\n", len(ids))
			return nil
		},
	}
}

func describePolicy(p recap.Policy) string {
	if len(p.AllowedPricingCategoryIDs) > 0 {
		ids := make([]string, len(p.AllowedPricingCategoryIDs))
		for i, id := range p.AllowedPricingCategoryIDs {
			ids[i] = fmt.Sprint(id)
		}
		return "only pricing categories " + strings.Join(ids, ",")
	}
	if len(p.ExcludedCategories) > 0 {
		return "all except " + strings.Join(p.ExcludedCategories, ", ")
	}
	return "all"
}
