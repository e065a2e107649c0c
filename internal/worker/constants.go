package worker

import "time"

const (
	DefaultWorkerCount = 2
	DefaultQueueSize   = 16
	DefaultJobTimeout  = 5 * time.Minute
)

const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgWorkerQueueFull = "Worker queue full, job skipped"
)
