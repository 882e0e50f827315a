package cli

import (
	"strings"

	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search sections by title, code or instructor",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	courses, err := s.Search(cmd.Context(), store.SearchParams{
		Term:  getTerm(),
		Query: query,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	printCourses(courses)
}
