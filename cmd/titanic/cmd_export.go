package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/dataset"
)

var (
	exportOut string
	exportBOM bool
)

var exportCmd = &cobra.Command{
	Use:   "export <train|test|submission>",
	Short: "Write one dataset resource as CSV",
	Long: `Write one dataset resource as CSV, the same bytes the web dashboard's
download buttons serve. The UTF-8 BOM keeps spreadsheet apps from
mangling non-ASCII names; disable it with --bom=false.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(dataset.Train), string(dataset.Test), string(dataset.Submission)},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVar(&exportBOM, "bom", true, "Prefix the output with a UTF-8 byte order mark")
}

func runExport(cmd *cobra.Command, args []string) error {
	res, err := dataset.ParseResource(args[0])
	if err != nil {
		return err
	}
	tbl, err := newCache().Load(cmd.Context(), res)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(exportOut)
	if err != nil {
		return err
	}
	defer closeOut()

	var opts []dataset.WriteOption
	if exportBOM {
		opts = append(opts, dataset.WithBOM())
	}
	if err := tbl.WriteCSV(w, opts...); err != nil {
		return err
	}
	rows, cols := tbl.Shape()
	logger.Debug("exported", zap.String("resource", string(res)), zap.Int("rows", rows), zap.Int("cols", cols))
	return nil
}
