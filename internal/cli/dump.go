package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/schedulizer/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export-db",
		Short: "Dump courses and saved schedules as JSON",
		Long:  "Dump courses and saved schedules as JSON. Filter by term with --term.",
		Run:   runExportDB,
	}

	importCmd := &cobra.Command{
		Use:   "import-db",
		Short: "Load a JSON dump",
		Long:  "Load courses and saved schedules from JSON on stdin. Expects the format produced by export-db.",
		Run:   runImportDB,
	}

	RootCmd.AddCommand(exportCmd, importCmd)
}

func runExportDB(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	dump, err := s.ExportAll(cmd.Context(), termFlag)
	if err != nil {
		exitErr("export", err)
	}

	printJSON(dump)
}

func runImportDB(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var dump store.Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), dump)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
