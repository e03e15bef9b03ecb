package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/SscSPs/splitsettle/internal/core/services"
	"github.com/SscSPs/splitsettle/internal/dto"
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringP("group", "g", "", "Group ID")
	planCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	_ = planCmd.MarkFlagRequired("group")
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print a group's balances and settlement plan",
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	groupID, _ := cmd.Flags().GetString("group")
	asJSON, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	container := services.NewServiceContainer(cfg, repos, services.Infrastructure{Logger: logger})
	balances, err := container.Balance.GetGroupBalances(ctx, groupID)
	if err != nil {
		return err
	}
	suggestions, err := container.Balance.GetSettlementSuggestions(ctx, groupID)
	if err != nil {
		return err
	}

	if asJSON {
		return writePlanJSON(cmd.OutOrStdout(), groupID, balances, suggestions)
	}
	return writePlanTable(cmd.OutOrStdout(), groupID, balances, suggestions)
}

func writePlanJSON(w io.Writer, groupID string, balances domain.BalanceMap, suggestions []domain.SettlementSuggestion) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		dto.GroupBalancesResponse
		Suggestions []dto.PlanEntryResponse `json:"suggestions"`
	}{
		GroupBalancesResponse: dto.ToGroupBalancesResponse(groupID, balances),
		Suggestions:           dto.ToSettlementSuggestionsResponse(groupID, suggestions).Suggestions,
	})
}

func writePlanTable(w io.Writer, groupID string, balances domain.BalanceMap, suggestions []domain.SettlementSuggestion) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Group %s\n\nMEMBER\tBALANCE\n", groupID)
	for _, b := range dto.ToGroupBalancesResponse(groupID, balances).Balances {
		fmt.Fprintf(tw, "%s\t%s\n", b.UserID, b.Balance.StringFixed(domain.MoneyPrecision))
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(tw, "\nAll settled up.")
		return tw.Flush()
	}
	fmt.Fprintln(tw, "\nFROM\tTO\tAMOUNT")
	for _, s := range suggestions {
		fmt.Fprintf(tw, "%s (%s)\t%s (%s)\t%s\n", s.PayerName, s.PayerID, s.PayeeName, s.PayeeID, s.Amount.StringFixed(domain.MoneyPrecision))
	}
	return tw.Flush()
}
