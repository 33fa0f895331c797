package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dcoach/internal/coach"
	apperrors "dcoach/internal/errors"
	"dcoach/internal/models"
	"dcoach/internal/store"
)

func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Import and list completed trades",
	}
	cmd.AddCommand(newTradesImportCmd(app))
	cmd.AddCommand(newTradesListCmd(app))
	rootCmd.AddCommand(cmd)
}

func newTradesImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import trades from a JSON file",
		Long: `Import completed trades from a JSON file. The file may hold an array of
trades or an object with a "trades" array. Existing trades with the same
transaction_id are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			trades, err := ParseTrades(data)
			if err != nil {
				return err
			}

			ds, err := app.dataStore()
			if err != nil {
				return err
			}
			if err := ds.SaveTrades(cmd.Context(), trades); err != nil {
				return err
			}
			app.Logger.Info().Str("file", args[0]).Int("count", len(trades)).Msg("Trades imported")

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": len(trades)})
			}
			output.Success("✓ Imported %d trades", len(trades))
			return nil
		},
	}
}

// ParseTrades decodes and validates a trade import file.
func ParseTrades(data []byte) ([]models.Trade, error) {
	var trades []models.Trade
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var wrapper struct {
			Trades *[]models.Trade `json:"trades"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidTrade, err.Error())
		}
		if wrapper.Trades == nil {
			return nil, apperrors.NewValidationError("trades", nil, "is required")
		}
		trades = *wrapper.Trades
	} else if err := json.Unmarshal(trimmed, &trades); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidTrade, err.Error())
	}

	seen := make(map[string]bool, len(trades))
	for i := range trades {
		t := &trades[i]
		t.ContractType = models.ContractType(strings.ToUpper(string(t.ContractType)))
		t.MarketContext.Trend = models.Trend(strings.ToLower(string(t.MarketContext.Trend)))
		t.MarketContext.Volatility = models.Volatility(strings.ToLower(string(t.MarketContext.Volatility)))

		switch {
		case t.TransactionID == "":
			return nil, apperrors.NewValidationError(fmt.Sprintf("trades[%d].transaction_id", i), t.TransactionID, "is required")
		case seen[t.TransactionID]:
			return nil, apperrors.NewValidationError(fmt.Sprintf("trades[%d].transaction_id", i), t.TransactionID, "is duplicated")
		case t.BuyPrice < 0:
			return nil, apperrors.NewValidationError(fmt.Sprintf("trades[%d].buy_price", i), t.BuyPrice, "must not be negative")
		case t.SellTime != 0 && t.SoldAt().Before(t.PurchasedAt()):
			return nil, apperrors.NewValidationError(fmt.Sprintf("trades[%d].sell_time", i), t.SellTime, "is before purchase_time")
		}
		seen[t.TransactionID] = true
	}
	return trades, nil
}

func newTradesListCmd(app *App) *cobra.Command {
	var filter store.TradeFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported trades, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			ds, err := app.dataStore()
			if err != nil {
				return err
			}
			trades, err := ds.GetTrades(cmd.Context(), filter)
			if err != nil {
				return err
			}
			summary := coach.Summarize(trades)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"summary": summary,
					"trades":  trades,
				})
			}

			if len(trades) == 0 {
				output.Warning("No trades imported yet. Use 'dcoach trades import <file>'.")
				return nil
			}

			table := NewTable(output, "ID", "Time", "Asset", "Type", "Stake", "P&L", "Trend", "Duration", "Held")
			for _, t := range trades {
				held := "-"
				if t.SellTime != 0 {
					held = FormatDuration(t.SoldAt().Sub(t.PurchasedAt()))
				}
				table.AddRow(
					t.TransactionID,
					FormatDateTime(t.PurchasedAt()),
					TruncateString(t.UnderlyingName, 24),
					string(t.ContractType),
					FormatMoney(t.BuyPrice),
					output.FormatPnL(t.Profit),
					string(t.MarketContext.Trend),
					t.Duration,
					held,
				)
			}
			table.Render()
			output.Println()
			output.Printf("%dW / %dL (%s)  P&L: %s\n",
				summary.Wins, summary.Losses, FormatPercent(summary.WinRate), output.FormatPnL(summary.TotalPnL))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Symbol, "symbol", "", "only trades on this underlying symbol")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "show only the most recent N trades")
	return cmd
}
