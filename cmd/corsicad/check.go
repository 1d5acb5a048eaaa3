package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/corsica/corsica"
	"github.com/corsica/corsica/policyfile"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		configPath string
		origin     string
		resource   string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a policy file against a request origin",
		Long: `Check loads a policy file, evaluates each resource's origin policy
against the given request origin, and prints the access-control headers
that a response would bear. With --resource, only that resource is
checked, and the exit status is non-zero if the origin is not allowed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := policyfile.Load(configPath)
			if err != nil {
				return err
			}
			policies, err := f.Policies()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if resource != "" {
				p, found := policies[resource]
				if !found {
					return fmt.Errorf("no resource %s in %s", resource, configPath)
				}
				delta, ok := p.Evaluate(origin)
				printDecision(out, resource, delta, ok)
				if !ok {
					return fmt.Errorf("origin %q is not allowed for resource %s", origin, resource)
				}
				return nil
			}
			for _, path := range slices.Sorted(maps.Keys(policies)) {
				delta, ok := policies[path].Evaluate(origin)
				printDecision(out, path, delta, ok)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "corsica.yaml", "path to the policy file")
	flags.StringVar(&origin, "origin", "", "value of the request's Origin header")
	flags.StringVar(&resource, "resource", "", "check a single resource path")
	_ = cmd.MarkFlagRequired("origin")
	return cmd
}

func printDecision(w io.Writer, resource string, delta corsica.Delta, ok bool) {
	if !ok {
		fmt.Fprintf(w, "%s: no access-control headers\n", resource)
		return
	}
	for _, name := range slices.Sorted(maps.Keys(delta)) {
		fmt.Fprintf(w, "%s: %s: %s\n", resource, name, delta[name])
	}
}
