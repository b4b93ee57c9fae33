package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/filter"
	"github.com/Khayman1/titanic-streamlit/views"
)

var (
	searchSex      []string
	searchPclass   []string
	searchAgeGroup []string
	searchSurvived []string
	searchLimit    int
	searchFormat   string
	searchOut      string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter passengers by sex, class, age group and survival",
	Long: `Filter the train passengers. Values within one flag are OR-combined, the
flags are AND-combined. An omitted flag selects every value of its dimension.

Examples:
  titanic search --sex female --pclass 1,2
  titanic search --age-group 0-19세 --survived 1 --format csv --out kids.csv`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchSex, "sex", nil, "Sex category: male, female, 기타")
	searchCmd.Flags().StringSliceVar(&searchPclass, "pclass", nil, "Cabin class: 1, 2, 3")
	searchCmd.Flags().StringSliceVar(&searchAgeGroup, "age-group", nil, "Age group label, e.g. 20-39세")
	searchCmd.Flags().StringSliceVar(&searchSurvived, "survived", nil, "Survival: 0, 1")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Rows to print (0 = all)")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "table", "Output format: table, csv, json")
	searchCmd.Flags().StringVarP(&searchOut, "out", "o", "", "Write output to file instead of stdout")
}

// searchCriteria starts from the full domain and narrows the dimensions
// whose flags were given.
func searchCriteria(cmd *cobra.Command) filter.Criteria {
	crit := filter.FullDomain()
	if cmd.Flags().Changed("sex") {
		crit.Sex = searchSex
	}
	if cmd.Flags().Changed("pclass") {
		crit.Pclass = searchPclass
	}
	if cmd.Flags().Changed("age-group") {
		crit.AgeGroup = searchAgeGroup
	}
	if cmd.Flags().Changed("survived") {
		crit.Survived = searchSurvived
	}
	return crit
}

type searchOutput struct {
	Criteria filter.Criteria   `json:"criteria"`
	Matched  int               `json:"matched"`
	Table    *engine.TableData `json:"table"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	data, closeRuns, err := newData(newCache(), false)
	if err != nil {
		return err
	}
	defer closeRuns()

	crit := searchCriteria(cmd)
	train, err := data.Train(cmd.Context())
	if err != nil {
		return err
	}
	matched := filter.Count(train, crit)
	logger.Debug("search", zap.Stringer("criteria", crit), zap.Int("matched", matched))

	page, err := views.SearchView{Criteria: crit, Applied: true, Limit: searchLimit}.Render(cmd.Context(), data)
	if err != nil {
		return err
	}
	tbl := page.Sections[0].Table

	w, closeOut, err := openOutput(searchOut)
	if err != nil {
		return err
	}
	defer closeOut()

	switch searchFormat {
	case "json":
		return writeJSON(w, searchOutput{Criteria: crit, Matched: matched, Table: tbl}, true)
	case "csv":
		return writeTableCSV(w, tbl)
	case "table", "":
		if err := writeTable(w, tbl); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, filter.Summary(matched))
		return err
	default:
		return fmt.Errorf("%w: unknown format %q (want table, csv or json)", views.ErrInvalidInput, searchFormat)
	}
}
