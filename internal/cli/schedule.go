package cli

import (
	"fmt"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/schedule"
	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Saved schedule management",
	}

	saveCmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Save a named selection of sections",
		Args:  cobra.ExactArgs(1),
		Run:   runScheduleSave,
	}
	saveCmd.Flags().IntSliceP("crn", "c", nil, "Course reference numbers (required)")
	saveCmd.Flags().Bool("allow-conflicts", false, "Save even if sections conflict")
	saveCmd.MarkFlagRequired("crn")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved schedules",
		Run:   runScheduleList,
	}

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show the sections of a saved schedule",
		Args:  cobra.ExactArgs(1),
		Run:   runScheduleShow,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [name]",
		Short: "Delete a saved schedule",
		Args:  cobra.ExactArgs(1),
		Run:   runScheduleRm,
	}

	scheduleCmd.AddCommand(saveCmd, listCmd, showCmd, rmCmd)
	RootCmd.AddCommand(scheduleCmd)
}

func runScheduleSave(cmd *cobra.Command, args []string) {
	crns, _ := cmd.Flags().GetIntSlice("crn")
	allow, _ := cmd.Flags().GetBool("allow-conflicts")
	term := requireTerm()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if !allow {
		courses, err := s.GetMany(cmd.Context(), term, crns)
		if err != nil {
			exitErr("load sections", err)
		}
		if schedule.HasConflict(courses) {
			exitErr("save schedule", fmt.Errorf("sections conflict (run check, or pass --allow-conflicts)"))
		}
	}

	sc, err := s.SaveSchedule(cmd.Context(), store.SaveScheduleParams{Term: term, Name: args[0], CRNs: crns})
	if err != nil {
		exitErr("save schedule", err)
	}

	printJSON(sc)
}

func runScheduleList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	schedules, err := s.ListSchedules(cmd.Context(), getTerm())
	if err != nil {
		exitErr("list schedules", err)
	}

	printJSON(schedules)
}

type scheduleView struct {
	*store.Schedule
	Courses []model.Course `json:"courses"`
}

func runScheduleShow(cmd *cobra.Command, args []string) {
	term := requireTerm()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sc, err := s.GetSchedule(cmd.Context(), term, args[0])
	if err != nil {
		exitErr("get schedule", err)
	}
	courses, err := s.GetMany(cmd.Context(), term, sc.CRNs)
	if err != nil {
		exitErr("load sections", err)
	}

	if textOutput() {
		printCourses(courses)
		return
	}
	printJSON(scheduleView{Schedule: sc, Courses: courses})
}

func runScheduleRm(cmd *cobra.Command, args []string) {
	term := requireTerm()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RmSchedule(cmd.Context(), term, args[0]); err != nil {
		exitErr("rm schedule", err)
	}

	fmt.Printf(`{"ok":true,"term":%q,"name":%q}`+"\n", term, args[0])
}
