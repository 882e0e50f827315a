package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a section",
		Run:   runGet,
	}

	cmd.Flags().IntP("crn", "c", 0, "Course reference number (required)")
	cmd.MarkFlagRequired("crn")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	crn, _ := cmd.Flags().GetInt("crn")
	term := requireTerm()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.Get(cmd.Context(), term, crn)
	if err != nil {
		exitErr("get", err)
	}

	printJSON(c)
}
