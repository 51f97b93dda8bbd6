package dataset

// ScanContext is the execution environment shared by every task spawned
// from one Scan call. It is read-only during execution.
type ScanContext struct {
	UseThreads bool
	// Parallelism caps the threaded worker pool; 0 means NumCPU.
	Parallelism int
}

func NewScanContext() *ScanContext {
	return &ScanContext{}
}

func (c *ScanContext) TaskGroup() TaskGroup {
	if c.UseThreads {
		return newThreadedTaskGroup(c.Parallelism)
	}
	return newSerialTaskGroup()
}
