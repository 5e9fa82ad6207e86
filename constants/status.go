package constants

// StageStatus is the canonical status for a document processing run.
type StageStatus string

// Stable values (logged and reported as these exact strings).
const (
	StageQueued   StageStatus = "QUEUED"   // waiting for a worker
	StageRunning  StageStatus = "RUNNING"  // in progress
	StageOCROK    StageStatus = "OCR_OK"   // stage 1 completed (text extracted)
	StageAnalyzed StageStatus = "ANALYZED" // stage 2 completed (analysis produced)
	StageFailed   StageStatus = "FAILED"   // terminal failure
)
