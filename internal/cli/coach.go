package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dcoach/internal/coach"
	"dcoach/internal/learning"
	"dcoach/internal/models"
)

func addCoachCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRiskCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newProgressCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newResetCmd(app))
}

func newRiskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "risk",
		Short: "Score recent trading behavior",
		Long: `Compute the behavioral risk score (0-100) over the 10 most recent trades.
The score starts at 50 and rises for martingale sizing, high loss rates,
stake outliers, and revenge trading.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			sess, err := app.Session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := sess.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snap)
			}

			output.Printf("Risk score: %s  %s\n", output.BoldText(fmt.Sprintf("%d/100", snap.RiskScore)), output.RiskLevel(string(snap.RiskLevel)))
			output.Printf("%s\n", ProgressBar(snap.RiskScore, 40))
			output.Println()

			if len(snap.Findings) == 0 {
				output.Dim("No risky patterns detected in the recent window.")
				return nil
			}

			table := NewTable(output, "Pattern", "Points", "Details")
			for _, f := range snap.Findings {
				where := "window"
				if f.Index >= 0 {
					where = fmt.Sprintf("trade #%d", f.Index+1)
				}
				table.AddRow(string(f.Rule), fmt.Sprintf("+%d", f.Points), where+": "+f.Rule.Describe())
			}
			table.Render()
			return nil
		},
	}
}

func newAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <trade-id>",
		Short: "Get a coaching review of one trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			sess, err := app.Session(ctx)
			if err != nil {
				return err
			}
			before := learning.TradingIQ(sess.State())

			analysis, err := sess.Analyze(ctx, args[0])
			if err != nil {
				return err
			}
			after := learning.TradingIQ(sess.State())
			lesson, hasLesson := coach.LessonFor(analysis.ConceptID)

			if output.IsJSON() {
				result := map[string]interface{}{
					"analysis":   analysis,
					"trading_iq": after,
				}
				if hasLesson {
					result["lesson"] = lesson
				}
				return output.JSON(result)
			}

			printAnalysis(output, analysis)
			if hasLesson {
				output.Println()
				output.Bold("📺 %s", lesson.Title)
				output.Printf("   %s\n", lesson.Description)
				output.Printf("   %s\n", output.Cyan(lesson.URL()))
			}
			output.Println()
			progress := sess.State()[analysis.ConceptID]
			output.Printf("Concept unlocked: %s (%d/%d)", output.Magenta(analysis.ConceptName), progress.Interactions, learning.MasteryThreshold)
			if progress.Mastered {
				output.Printf("  %s", output.Green("★ mastered"))
			}
			output.Println()
			output.Printf("Trading IQ: %d → %s\n", before, output.BoldText(fmt.Sprint(after)))
			return nil
		},
	}
}

func printAnalysis(output *Output, a *models.TradeAnalysis) {
	output.Printf("%s  trade %s  risk %s (%d)\n",
		output.Verdict(string(a.Verdict)), a.TradeID, output.RiskLevel(string(a.RiskAssessment)), a.RiskScore)
	output.Println()
	output.Bold("What happened")
	output.Printf("  %s\n", a.Mistake)
	output.Println()
	output.Bold("Lesson")
	output.Printf("  %s\n", a.Lesson)
	if len(a.ActionItems) > 0 {
		output.Println()
		output.Bold("Next time")
		for _, item := range a.ActionItems {
			output.Printf("  • %s\n", item)
		}
	}
	if a.Encouragement != "" {
		output.Println()
		output.Info("%s", a.Encouragement)
	}
}

func newProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show your learning path and Trading IQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			sess, err := app.Session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := sess.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trading_iq": snap.TradingIQ,
					"learned":    snap.Learned,
					"mastered":   snap.Mastered,
					"state":      snap.State,
				})
			}

			output.Printf("Trading IQ %s  %s\n", output.BoldText(fmt.Sprintf("%3d", snap.TradingIQ)), ProgressBar(snap.TradingIQ, 30))
			output.Dim("%d concepts learned, %d mastered", len(snap.Learned), snap.Mastered)

			catalog := sess.Catalog()
			for _, level := range catalog.Levels() {
				output.Println()
				output.Bold("Level %d: %s", level, learning.LevelLabel(level))
				for _, c := range catalog.ByLevel(level) {
					output.Println(conceptLine(output, c, snap.State[c.ID]))
				}
			}

			var extra []string
			for id, p := range snap.State {
				if _, ok := catalog.Lookup(id); !ok && p.Unlocked {
					extra = append(extra, string(id))
				}
			}
			if len(extra) > 0 {
				output.Println()
				output.Bold("Other topics")
				output.Printf("  %s\n", strings.Join(sortedStrings(extra), ", "))
			}
			return nil
		},
	}
}

func conceptLine(output *Output, c models.Concept, p models.ConceptProgress) string {
	status := output.DimText("🔒 locked")
	switch {
	case p.Mastered:
		status = output.Green("★ mastered")
	case p.Unlocked:
		status = output.Yellow("● learning")
	}
	return fmt.Sprintf("  %s %s %s %s",
		c.Icon, PadRight(c.Name, 26), ProgressBar(learning.ProgressPercent(p), 12), status)
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past analyses for this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			sess, err := app.Session(cmd.Context())
			if err != nil {
				return err
			}
			analyses, err := sess.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(analyses)
			}
			if len(analyses) == 0 {
				output.Dim("No analyses yet. Run 'dcoach analyze <trade-id>'.")
				return nil
			}

			table := NewTable(output, "When", "Trade", "Verdict", "Concept", "Risk")
			for _, a := range analyses {
				table.AddRow(
					FormatDateTime(a.CreatedAt),
					a.TradeID,
					output.Verdict(string(a.Verdict)),
					a.ConceptName,
					output.RiskLevel(string(a.RiskAssessment)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of analyses to show (0 for all)")
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear learning progress for this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !yes {
				output.Warning("This clears all learning progress for session %q. Re-run with --yes to confirm.", app.Config.Coach.Session)
				return nil
			}

			sess, err := app.Session(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.Reset(cmd.Context()); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"reset": sess.Name()})
			}
			output.Success("✓ Learning progress reset for %s", sess.Name())
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
