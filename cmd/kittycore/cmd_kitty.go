package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kittycore/internal/core"
)

func createCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Spawn a kitty with fresh DNA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caller, err := a.requireCaller()
			if err != nil {
				return err
			}
			id, err := a.svc.Create(cmd.Context(), caller)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created kitty %d\n", id)
			return nil
		},
	}
}

func breedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "breed <father> <mother>",
		Short: "Breed two owned kitties",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.requireCaller()
			if err != nil {
				return err
			}
			father, err := parseKittyID(args[0])
			if err != nil {
				return err
			}
			mother, err := parseKittyID(args[1])
			if err != nil {
				return err
			}
			id, err := a.svc.Breed(cmd.Context(), caller, father, mother)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bred kitty %d from %d x %d\n", id, father, mother)
			return nil
		},
	}
}

func transferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <kitty> <to>",
		Short: "Hand a kitty to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.requireCaller()
			if err != nil {
				return err
			}
			id, err := parseKittyID(args[0])
			if err != nil {
				return err
			}
			to := core.AccountID(args[1])
			if err := a.svc.Transfer(cmd.Context(), caller, to, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transferred kitty %d to %s\n", id, to)
			return nil
		},
	}
}

type kittyReport struct {
	ID       core.KittyID   `json:"id"`
	DNA      core.DNA       `json:"dna"`
	Owner    core.AccountID `json:"owner"`
	Parents  *core.Parents  `json:"parents,omitempty"`
	Siblings []core.KittyID `json:"siblings"`
	Partner  *core.KittyID  `json:"partner,omitempty"`
}

func showCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <kitty>",
		Short: "Print a kitty with its owner and lineage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKittyID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			kitty, ok, err := a.svc.Kitty(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("kitty %d not found", id)
			}
			report := kittyReport{ID: kitty.ID, DNA: kitty.DNA}
			if report.Owner, _, err = a.svc.OwnerOf(ctx, id); err != nil {
				return err
			}
			if parents, ok, err := a.svc.ParentsOf(ctx, id); err != nil {
				return err
			} else if ok {
				report.Parents = &parents
			}
			if report.Siblings, err = a.svc.SiblingsOf(ctx, id); err != nil {
				return err
			}
			if partner, ok, err := a.svc.PartnerOf(ctx, id); err != nil {
				return err
			} else if ok {
				report.Partner = &partner
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintf(out, "kitty %d\n  dna:     %s\n  owner:   %s\n", report.ID, report.DNA, report.Owner)
			if report.Parents != nil {
				fmt.Fprintf(out, "  parents: %d x %d\n", report.Parents.Father, report.Parents.Mother)
			}
			if report.Partner != nil {
				fmt.Fprintf(out, "  partner: %d\n", *report.Partner)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func ownedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "owned <account>",
		Short: "List the kitties of an account in acquisition order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.svc.KittiesOf(cmd.Context(), core.AccountID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), joinIDs(ids))
			return nil
		},
	}
}

func lineageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <kitty>",
		Short: "Print parents, siblings and partner of a kitty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKittyID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			parents, ok, err := a.svc.ParentsOf(ctx, id)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "parents:  %d x %d\n", parents.Father, parents.Mother)
			} else {
				fmt.Fprintln(out, "parents:  -")
			}
			siblings, err := a.svc.SiblingsOf(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "siblings: %s\n", joinIDs(siblings))
			partner, ok, err := a.svc.PartnerOf(ctx, id)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "partner:  %d\n", partner)
			} else {
				fmt.Fprintln(out, "partner:  -")
			}
			return nil
		},
	}
}

func childrenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "children <father> <mother>",
		Short: "List children of an ordered parent pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			father, err := parseKittyID(args[0])
			if err != nil {
				return err
			}
			mother, err := parseKittyID(args[1])
			if err != nil {
				return err
			}
			ids, err := a.svc.ChildrenOf(cmd.Context(), father, mother)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), joinIDs(ids))
			return nil
		},
	}
}

func joinIDs(ids []core.KittyID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " ")
}
