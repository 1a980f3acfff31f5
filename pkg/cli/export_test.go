package cli

// Export internal functions for testing
var (
	GetMigrationConfig = getMigrationConfig
	PrintReply         = printReply
)
