package cli

import (
	"fmt"
	"os"

	"github.com/rcliao/schedulizer/internal/catalog"
	"github.com/rcliao/schedulizer/internal/config"
	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/scorer"
	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank sections against scoring criteria",
		Long:  "Rank sections against a criteria file. Select sections with --crn, --schedule or --code; with none, every section in the term is scored.",
		Run:   runScore,
	}

	addSelectionFlags(cmd)
	cmd.Flags().String("criteria", "", "Criteria file, YAML or JSON (required)")
	cmd.Flags().StringSlice("code", nil, "Course codes to score, e.g. MATH1020U")
	cmd.Flags().Bool("csv", false, "Write the ranking as CSV")
	cmd.MarkFlagRequired("criteria")

	RootCmd.AddCommand(cmd)
}

func runScore(cmd *cobra.Command, args []string) {
	criteriaPath, _ := cmd.Flags().GetString("criteria")
	codes, _ := cmd.Flags().GetStringSlice("code")
	asCSV, _ := cmd.Flags().GetBool("csv")
	crns, _ := cmd.Flags().GetIntSlice("crn")
	name, _ := cmd.Flags().GetString("schedule")

	criteria, err := config.LoadCriteria(criteriaPath)
	if err != nil {
		exitErr("load criteria", err)
	}

	term := requireTerm()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	var courses []model.Course
	switch {
	case len(crns) > 0 || name != "":
		courses, err = loadSelection(ctx, s, term, crns, name)
	case len(codes) > 0:
		for _, code := range codes {
			var found []model.Course
			found, err = s.List(ctx, store.ListParams{Term: term, Code: code, Limit: 1 << 20})
			if err != nil {
				break
			}
			if len(found) == 0 {
				warn(cmd, "no sections for %s in %s", code, term)
			}
			courses = append(courses, found...)
		}
	default:
		courses, err = s.List(ctx, store.ListParams{Term: term, Limit: 1 << 20})
	}
	if err != nil {
		exitErr("select", err)
	}

	results := scorer.Rank(*criteria, courses)

	if asCSV {
		if err := catalog.WriteScoresCSV(os.Stdout, results); err != nil {
			exitErr("write csv", err)
		}
		return
	}
	if textOutput() {
		for i, r := range results {
			fmt.Printf("%d\t%.3f\t%s\t%d\t%s\n", i+1, r.Score, r.Code, r.CRN, r.Title)
		}
		return
	}
	printJSON(results)
}
