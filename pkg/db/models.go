package db

// RunRecord is the result of one (instance, method, seed) search run
type RunRecord struct {
	ID         string
	Instance   string
	Method     string
	Seed       int64
	Iterations int
	TopK       int
	C1         int
	C2         int
	C3         int
	RuntimeSec float64

	// CreatedAt is an RFC 3339 timestamp
	CreatedAt string
}

// RunSummary aggregates the runs of one method on one instance
type RunSummary struct {
	Instance   string
	Method     string
	Runs       int
	AvgC1      float64
	AvgC2      float64
	AvgC3      float64
	BestC1     int
	BestC2     int
	BestC3     int
	AvgRuntime float64
	BestSeed   int64
}
