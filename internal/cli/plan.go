package cli

import (
	"fmt"

	"github.com/rcliao/schedulizer/internal/config"
	"github.com/rcliao/schedulizer/internal/schedule"
	"github.com/rcliao/schedulizer/internal/scorer"
	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "plan [code...]",
		Short: "Build a conflict-free schedule",
		Long:  "Pick one section per course code, best-scoring first, skipping sections that conflict with those already chosen. Codes are placed in the order given.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runPlan,
	}

	cmd.Flags().String("criteria", "", "Criteria file, YAML or JSON")
	cmd.Flags().String("mode", string(schedule.ModeSweep), "Conflict scan mode: sweep or adjacent")
	cmd.Flags().String("save", "", "Save the result as a named schedule")

	RootCmd.AddCommand(cmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	criteriaPath, _ := cmd.Flags().GetString("criteria")
	modeStr, _ := cmd.Flags().GetString("mode")
	save, _ := cmd.Flags().GetString("save")

	mode, ok := schedule.ParseMode(modeStr)
	if !ok {
		exitErr("mode", fmt.Errorf("unknown mode %q (valid: sweep, adjacent)", modeStr))
	}

	var criteria scorer.Criteria
	if criteriaPath != "" {
		c, err := config.LoadCriteria(criteriaPath)
		if err != nil {
			exitErr("load criteria", err)
		}
		criteria = *c
	}

	term := requireTerm()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	result, err := s.Plan(cmd.Context(), store.PlanParams{
		Term:     term,
		Codes:    args,
		Criteria: criteria,
		Mode:     mode,
	})
	if err != nil {
		exitErr("plan", err)
	}
	for _, code := range result.Unplaced {
		warn(cmd, "could not place %s", code)
	}

	if save != "" {
		if _, err := s.SaveSchedule(cmd.Context(), store.SaveScheduleParams{
			Term: term,
			Name: save,
			CRNs: crnsOf(result.Courses),
		}); err != nil {
			exitErr("save schedule", err)
		}
	}

	printJSON(result)
}
