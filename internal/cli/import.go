package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rcliao/schedulizer/internal/catalog"
	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import catalog sections",
		Long: "Import sections from a Banner search payload (JSON) or a flat CSV catalog, read from a file or stdin.\n" +
			"Courses refreshed within --max-age are left untouched unless --force is given.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	cmd.Flags().Bool("csv", false, "Input is a flat CSV catalog")
	cmd.Flags().String("max-age", "30m", "Skip courses refreshed within this age (e.g. 30m, 24h, 7d)")
	cmd.Flags().Bool("force", false, "Replace sections even when still fresh")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	isCSV, _ := cmd.Flags().GetBool("csv")
	maxAgeStr, _ := cmd.Flags().GetString("max-age")
	force, _ := cmd.Flags().GetBool("force")

	maxAge, err := store.ParseTTL(maxAgeStr)
	if err != nil {
		exitErr("max-age", err)
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open input", err)
		}
		defer f.Close()
		in = f
	}

	term := getTerm()
	var courses []model.Course
	var errs []error
	if isCSV {
		courses, errs = catalog.LoadCSV(in)
	} else {
		courses, errs = catalog.DecodeBanner(in, term)
	}
	for _, e := range errs {
		warn(cmd, "%v", e)
	}
	if len(courses) == 0 && len(errs) > 0 {
		exitErr("import", fmt.Errorf("no sections decoded"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	imported, skipped := 0, 0
	fresh := map[string]bool{}
	for _, c := range courses {
		if term != "" && c.Term == "" {
			c.Term = term
		}
		if !force {
			key := c.Term + "/" + c.Code()
			ok, seen := fresh[key]
			if !seen {
				ok, err = s.IsFresh(ctx, c.Term, c.Fac, c.UID, maxAge)
				if err != nil {
					exitErr("check freshness", err)
				}
				fresh[key] = ok
			}
			if ok {
				skipped++
				continue
			}
		}
		if _, err := s.Put(ctx, c); err != nil {
			warn(cmd, "crn %d: %v", c.CRN, err)
			continue
		}
		imported++
	}

	fmt.Printf(`{"ok":true,"imported":%d,"skipped":%d,"errors":%d}`+"\n", imported, skipped, len(errs))
}
