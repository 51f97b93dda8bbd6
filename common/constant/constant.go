package constant

const (
	// DefaultBatchSize is the row count hint handed to file readers when
	// the caller does not override it through ScannerBuilder.BatchSize.
	DefaultBatchSize = 1024

	ParquetDataFileSuffix = ".parquet"
	DataDir               = "data"
)
