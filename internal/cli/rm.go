package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a section",
		Run:   runRm,
	}

	cmd.Flags().IntP("crn", "c", 0, "Course reference number (required)")
	cmd.MarkFlagRequired("crn")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	crn, _ := cmd.Flags().GetInt("crn")
	term := requireTerm()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Rm(cmd.Context(), term, crn); err != nil {
		exitErr("rm", err)
	}

	fmt.Printf(`{"ok":true,"term":%q,"crn":%d}`+"\n", term, crn)
}
