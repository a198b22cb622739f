package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show or reset the stored app state",
}

var (
	stateShowDate string
	stateShowJSON bool
	stateResetYes bool
)

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		bridge, err := openBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer bridge.Close()

		s := bridge.Load(cmd.Context())
		if stateShowJSON {
			return printJSON(cmd.OutOrStdout(), s)
		}

		out := cmd.OutOrStdout()
		if p, ok := s.Profile.Get(); ok {
			fmt.Fprintf(out, "Profile:  %s, %d y, %.0f cm, %.1f kg, %s, goal %s\n",
				p.Gender, p.Age, p.Height, p.Weight, p.ActivityLevel, p.Goal)
			fmt.Fprintf(out, "Targets:  %d kcal, P %d g, C %d g, F %d g\n",
				p.Targets.Calories, p.Targets.Protein, p.Targets.Carbs, p.Targets.Fat)
		} else {
			fmt.Fprintln(out, "Profile:  onboarding pending")
		}
		fmt.Fprintf(out, "Days:     %d\n", len(s.Logs))
		fmt.Fprintf(out, "Streak:   %d\n", s.Streak)
		fmt.Fprintf(out, "Recipes:  %d\n", len(s.RecommendedRecipes))

		if stateShowDate == "" {
			return nil
		}
		l, ok := s.Log(stateShowDate)
		if !ok {
			fmt.Fprintf(out, "\nNo meals on %s\n", stateShowDate)
			return nil
		}
		fmt.Fprintf(out, "\n%s\n", stateShowDate)
		fmt.Fprintln(out, "ID\tNAME\tKCAL\tP\tC\tF")
		for _, m := range l.Meals {
			fmt.Fprintf(out, "%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n", m.ID, m.Name, m.Calories, m.Protein, m.Carbs, m.Fat)
		}
		t := nutrition.SumMeals(l.Meals)
		fmt.Fprintf(out, "TOTAL\t\t%.0f\t%.1f\t%.1f\t%.1f\n", t.Calories, t.Protein, t.Carbs, t.Fat)
		return nil
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the slot with the default state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stateResetYes {
			return fmt.Errorf("refusing to reset without --yes")
		}
		cfg := loadConfig()
		bridge, err := openBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer bridge.Close()

		if err := bridge.Save(cmd.Context(), state.Default()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "State reset to defaults")
		return nil
	},
}

func init() {
	stateShowCmd.Flags().StringVar(&stateShowDate, "date", "", "Also list the meals of this day (YYYY-MM-DD)")
	stateShowCmd.Flags().BoolVar(&stateShowJSON, "json", false, "Print the raw snapshot as JSON")
	stateResetCmd.Flags().BoolVar(&stateResetYes, "yes", false, "Confirm the reset")

	stateCmd.AddCommand(stateShowCmd, stateResetCmd)
	rootCmd.AddCommand(stateCmd)
}
