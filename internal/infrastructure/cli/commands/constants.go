package commands

// Error messages
const (
	ErrUnhealthyMessage = "one or more checks failed"
)

// Summary messages
const (
	MsgAllOperational = "All systems operational."
	MsgNeedsAttention = "Some services need attention."
)

// Progress messages
const (
	MsgChecking = "Checking services..."
)
