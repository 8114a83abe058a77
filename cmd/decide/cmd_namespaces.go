package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var namespacesCmd = &cobra.Command{
	Use:   "namespaces [namespace-id]",
	Short: "List knowledge namespaces, or the items of one namespace",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNamespaces,
}

func runNamespaces(cmd *cobra.Command, args []string) error {
	_, kb, err := buildEngine()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		ns, ok := kb.Namespace(args[0])
		if !ok {
			return fmt.Errorf("unknown namespace %q", args[0])
		}
		fmt.Fprintf(out, "%s: %s\n\n", ns.Name, ns.Description)
		for _, item := range kb.Get(ns.ID) {
			fmt.Fprintf(out, "- [%s] %s\n", item.ID, item.Content)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tITEMS\tMETRICS")
	for _, ns := range kb.Catalogue() {
		sum := kb.Summary(ns.ID)
		fmt.Fprintf(w, "%s\t%d\t%s\n", ns.ID, sum.ItemCount, strings.Join(sum.Metrics, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nPrinciples:")
	for _, p := range kb.Principles() {
		fmt.Fprintf(out, "- %s: %s\n", p.Name, p.Description)
	}
	return nil
}
