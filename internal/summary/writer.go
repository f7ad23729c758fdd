package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/danielpatrickdp/runsummary/internal/record"
	"github.com/danielpatrickdp/runsummary/internal/schema"
)

// #region columns
// excludedParams are run fields that describe bookkeeping rather than the
// experiment and are left out of the final table.
var excludedParams = map[string]bool{
	"model-mode": true,
}

// statColumns follow the run parameters in every summary row.
var statColumns = []string{
	"final-year-timer",
	"min-cows-threshold",
	"min-harvest-threshold",
	"min-woodland-threshold",
	"min-cow-count",
	"mean-cow-count",
	"max-cow-count",
	"min-harvest",
	"mean-harvest",
	"max-harvest",
	"total-harvest",
	"min-woodland-biomass",
	"mean-woodland-biomass",
	"max-woodland-biomass",
	"max-percent-crop-eaten",
	"actual-cow-repro-rate",
	"crop-eaten-per-half-hour-per-cow",
	"subsidy-used",
	"end-year",
	"termination-reason",
	"threshold-seed",
}

// ParamColumns lists the run parameters carried into the summary.
func ParamColumns() []string {
	var cols []string
	for _, f := range schema.ParamFields() {
		if !excludedParams[f.Name] {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// Columns is the fixed header of the final summary table.
func Columns() []string {
	cols := append([]string{record.FieldRunID}, ParamColumns()...)
	return append(cols, statColumns...)
}

func selectParams(params record.Values) record.Values {
	out := make(record.Values, 0, len(params))
	for _, nv := range params {
		if !excludedParams[nv.Name] {
			out = append(out, nv)
		}
	}
	return out
}
// #endregion columns

// #region row
// Row renders the record in Columns order. Absent values are empty cells.
func (r Record) Row() []string {
	row := []string{r.RunID}
	for _, name := range ParamColumns() {
		v, _ := r.Params.Get(name)
		row = append(row, v.Text())
	}
	return append(row,
		optFloat(r.FinalYearTimer),
		strconv.Itoa(r.MinCowsThreshold),
		record.FormatFloat(r.MinHarvestThreshold),
		record.FormatFloat(r.MinWoodlandThreshold),
		optInt(r.MinCowCount),
		optFloat(r.MeanCowCount),
		optInt(r.MaxCowCount),
		optFloat(r.MinHarvest),
		optFloat(r.MeanHarvest),
		optFloat(r.MaxHarvest),
		record.FormatFloat(r.TotalHarvest),
		optFloat(r.MinWoodland),
		optFloat(r.MeanWoodland),
		optFloat(r.MaxWoodland),
		record.FormatFloat(r.MaxPercentCropEaten),
		optFloat(r.ActualCowReproRate),
		optFloat(r.CropEatenPerHalfHourPerCow),
		optFloat(r.SubsidyUsed),
		optInt(r.EndYear),
		string(r.TerminationReason),
		strconv.FormatUint(r.Seed, 10),
	)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return record.FormatFloat(*v)
}

func optInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
// #endregion row

// #region write
// Write emits the header and one row per record, in the order given.
func Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write summary row %s: %w", r.RunID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return nil
}
// #endregion write
