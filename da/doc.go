// Package da implements the Directory Agent core: the service registry
// (ServiceInfoCache), the dispatcher that classifies inbound wire.Message
// events, the four request handlers, and the periodic tasks that drive
// advertisement and expiry. It is grounded in
// org.livetribe.slp.da.StandardDirectoryAgentServer, adapted from a
// threads-and-locks Java service into the same shape using Go
// goroutines, channels and a sync.RWMutex.
package da
