package config

const (
	// TopicIndexEvents is the NSQ topic for indexing progress events
	// (page.indexed, page.failed, run.completed).
	TopicIndexEvents = "index.events"
)
