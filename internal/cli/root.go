// Package cli implements the schedulizer CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rcliao/schedulizer/internal/config"
	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath       string
	formatFlag   string
	semesterPath string
	termFlag     string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "schedulizer",
	Short: "Course timetable builder",
	Long:  "Import a course catalog, check sections for conflicts, score them against your preferences and export the result as an iCalendar file.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SCHEDULIZER_DB or ~/.schedulizer/courses.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&semesterPath, "semester", "s", "", "Semester config file (default: $SCHEDULIZER_SEMESTER)")
	RootCmd.PersistentFlags().StringVarP(&termFlag, "term", "t", "", "Term id, e.g. 202201 (default: the semester config's term)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("SCHEDULIZER_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".schedulizer", "courses.db")
}

func getSemesterPath() string {
	if semesterPath != "" {
		return semesterPath
	}
	return os.Getenv("SCHEDULIZER_SEMESTER")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func loadSemester() (*model.Semester, error) {
	path := getSemesterPath()
	if path == "" {
		return nil, fmt.Errorf("semester config is required (--semester or $SCHEDULIZER_SEMESTER)")
	}
	return config.LoadSemester(path)
}

// getTerm resolves the term from --term, falling back to the semester config.
func getTerm() string {
	if termFlag != "" {
		return termFlag
	}
	if getSemesterPath() == "" {
		return ""
	}
	sem, err := loadSemester()
	if err != nil {
		exitErr("load semester", err)
	}
	return sem.TermID
}

func requireTerm() string {
	term := getTerm()
	if term == "" {
		exitErr("term", fmt.Errorf("term is required (--term or a semester config)"))
	}
	return term
}

func textOutput() bool {
	return formatFlag == "text"
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warn: "+format+"\n", args...)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
