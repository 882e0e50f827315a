package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/schedule"
	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report time conflicts between sections",
		Run:   runCheck,
	}

	addSelectionFlags(cmd)
	cmd.Flags().String("mode", string(schedule.ModeSweep), "Scan mode: sweep or adjacent")

	RootCmd.AddCommand(cmd)
}

type checkResult struct {
	Term      string              `json:"term"`
	CRNs      []int               `json:"crns"`
	Conflict  bool                `json:"conflict"`
	Conflicts []schedule.Conflict `json:"conflicts"`
}

func runCheck(cmd *cobra.Command, args []string) {
	modeStr, _ := cmd.Flags().GetString("mode")
	mode, ok := schedule.ParseMode(modeStr)
	if !ok {
		exitErr("mode", fmt.Errorf("unknown mode %q (valid: sweep, adjacent)", modeStr))
	}

	term := requireTerm()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	courses, err := selectCourses(cmd, s, term)
	if err != nil {
		exitErr("select", err)
	}

	conflicts := schedule.Detector{Mode: mode}.FindConflicts(courses)
	res := checkResult{Term: term, CRNs: crnsOf(courses), Conflict: len(conflicts) > 0, Conflicts: conflicts}
	if res.Conflicts == nil {
		res.Conflicts = []schedule.Conflict{}
	}

	if textOutput() {
		for _, c := range conflicts {
			fmt.Printf("%s\t%s (%d) %s-%s\t%s (%d) %s-%s\n", model.WeekdayNames[c.Weekday],
				c.A.Code, c.A.CRN, c.A.Meeting.TimeStart, c.A.Meeting.TimeEnd,
				c.B.Code, c.B.CRN, c.B.Meeting.TimeStart, c.B.Meeting.TimeEnd)
		}
		return
	}
	printJSON(res)
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceP("crn", "c", nil, "Course reference numbers (comma-separated)")
	cmd.Flags().String("schedule", "", "Use the CRNs of a saved schedule")
}

// selectCourses loads the sections named by --crn and --schedule.
func selectCourses(cmd *cobra.Command, s *store.SQLiteStore, term string) ([]model.Course, error) {
	crns, _ := cmd.Flags().GetIntSlice("crn")
	name, _ := cmd.Flags().GetString("schedule")
	return loadSelection(cmd.Context(), s, term, crns, name)
}

func loadSelection(ctx context.Context, s *store.SQLiteStore, term string, crns []int, name string) ([]model.Course, error) {
	if name != "" {
		sc, err := s.GetSchedule(ctx, term, name)
		if err != nil {
			return nil, err
		}
		crns = append(slices.Clone(sc.CRNs), crns...)
	}
	if len(crns) == 0 {
		return nil, fmt.Errorf("no sections selected (use --crn or --schedule)")
	}

	seen := map[int]bool{}
	unique := make([]int, 0, len(crns))
	for _, crn := range crns {
		if !seen[crn] {
			seen[crn] = true
			unique = append(unique, crn)
		}
	}
	return s.GetMany(ctx, term, unique)
}

func crnsOf(courses []model.Course) []int {
	crns := make([]int, len(courses))
	for i, c := range courses {
		crns[i] = c.CRN
	}
	return crns
}
