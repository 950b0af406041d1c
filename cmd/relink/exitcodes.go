package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (library snapshot unavailable, bad config)
	ExitDataError   = 3 // Data error (unreadable document, no citation fields)
)
