package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

var (
	targetsInput nutrition.ProfileInput
	targetsJSON  bool
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Compute daily calorie and macro targets",
	Example: "  nutrictl targets --gender male --age 30 --height 180 --weight 80 --activity moderate --goal lose\n" +
		"  nutrictl targets --gender female --age 28 --height 165 --weight 60 --activity 1.375 --goal maintain --json",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := targetsInput.TargetsInput()
		if err != nil {
			return err
		}
		res := nutrition.Preview(in)
		if targetsJSON {
			return printJSON(cmd.OutOrStdout(), res)
		}

		out := cmd.OutOrStdout()
		if res.Targets.IsZero() {
			fmt.Fprintln(out, "No targets: age, height and weight must be positive")
			return nil
		}
		fmt.Fprintf(out, "BMR:      %d kcal\n", res.BMR)
		fmt.Fprintf(out, "TDEE:     %d kcal\n", res.TDEE)
		fmt.Fprintf(out, "Calories: %d kcal\n", res.Targets.Calories)
		fmt.Fprintf(out, "Protein:  %d g\n", res.Targets.Protein)
		fmt.Fprintf(out, "Carbs:    %d g\n", res.Targets.Carbs)
		fmt.Fprintf(out, "Fat:      %d g\n", res.Targets.Fat)
		return nil
	},
}

func init() {
	f := targetsCmd.Flags()
	f.StringVar(&targetsInput.Gender, "gender", "", "male or female")
	f.IntVar(&targetsInput.Age, "age", 0, "Age in years")
	f.Float64Var(&targetsInput.Height, "height", 0, "Height in cm")
	f.Float64Var(&targetsInput.Weight, "weight", 0, "Weight in kg")
	f.StringVar(&targetsInput.ActivityLevel, "activity", string(nutrition.ActivityModerate), "Activity level name or multiplier")
	f.StringVar(&targetsInput.Goal, "goal", string(nutrition.GoalMaintain), "lose, maintain or gain")
	f.BoolVar(&targetsJSON, "json", false, "Print JSON")
	_ = targetsCmd.MarkFlagRequired("gender")

	rootCmd.AddCommand(targetsCmd)
}
