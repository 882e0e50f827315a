package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rcliao/schedulizer/internal/calendar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write selected sections as an iCalendar file",
		Long:  "Write the meetings of the selected sections, plus the semester's universal events, as an .ics document. Requires a semester config.",
		Run:   runExport,
	}

	addSelectionFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	sem, err := loadSemester()
	if err != nil {
		exitErr("load semester", err)
	}
	term := termFlag
	if term == "" {
		term = sem.TermID
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	courses, err := selectCourses(cmd, s, term)
	if err != nil {
		exitErr("select", err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}

	exp := calendar.NewExporter()
	events := exp.Events(*sem, courses)
	if err := exp.Write(w, *sem, courses); err != nil {
		exitErr("write calendar", err)
	}

	if out != "" {
		fmt.Printf(`{"ok":true,"out":%q,"events":%d}`+"\n", out, len(events))
	}
}
