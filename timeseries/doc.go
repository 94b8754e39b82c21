// Package timeseries provides the raw series type fed into the selection pipeline.
//
// # Creating a Series
//
// Create a time series from a slice; observations are stamped hourly from a
// fixed origin so runs are reproducible:
//
//	series := timeseries.New([]float64{100, 102, 105, 103, 108, 110})
//
// # Loading from CSV
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.ValueColumn = "demand"
//	opts.IDColumn = "region"
//	opts.IDFilter = "north"
//	series, err := timeseries.LoadCSV("demand.csv", opts)
//
// Rows whose value is empty, NA, NaN or null are skipped. Rows whose value
// does not parse as a number are skipped and counted in Series.Dropped. If
// any row's date fails to parse, the series falls back to synthetic hourly
// timestamps and Series.Undated reports how many dates were rejected.
//
// # Splitting
//
// Split cuts a series chronologically into training and testing parts:
//
//	training, testing, err := series.Split(0.8)
package timeseries
