package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kittycore/internal/core"
)

func endowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "endow <account> <amount>",
		Short: "Credit free balance to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			bal, err := a.svc.Endow(cmd.Context(), core.AccountID(args[0]), amount)
			if err != nil {
				return err
			}
			printBalance(cmd, args[0], bal)
			return nil
		},
	}
}

func balanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Print the free and reserved balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := a.svc.Account(cmd.Context(), core.AccountID(args[0]))
			if err != nil {
				return err
			}
			printBalance(cmd, args[0], bal)
			return nil
		},
	}
}

func printBalance(cmd *cobra.Command, account string, bal core.AccountBalance) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s free=%d reserved=%d\n", account, bal.Free, bal.Reserved)
}
