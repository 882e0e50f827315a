package cli

import (
	"fmt"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sections",
		Run:   runList,
	}

	cmd.Flags().String("fac", "", "Filter by faculty, e.g. MATH")
	cmd.Flags().String("uid", "", "Filter by course number, e.g. 1020U")
	cmd.Flags().String("code", "", "Filter by course code, e.g. MATH1020U")
	cmd.Flags().IntP("limit", "l", 100, "Max results")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	fac, _ := cmd.Flags().GetString("fac")
	uid, _ := cmd.Flags().GetString("uid")
	code, _ := cmd.Flags().GetString("code")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	courses, err := s.List(cmd.Context(), store.ListParams{
		Term:  getTerm(),
		Fac:   fac,
		UID:   uid,
		Code:  code,
		Limit: limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	printCourses(courses)
}

func printCourses(courses []model.Course) {
	if textOutput() {
		for _, c := range courses {
			fmt.Printf("%s\t%s\t%d\t%s\t%s\t%d/%d\n", c.Term, c.Code(), c.CRN, c.Section, c.Title, c.SeatsFilled, c.MaxCapacity)
		}
		return
	}
	printJSON(courses)
}
