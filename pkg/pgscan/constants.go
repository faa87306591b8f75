package pgscan

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Command completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or properties
	ExitConnectionError   = 11 // Failed to connect to database
	ExitResolutionError   = 20 // Search path could not be queried
	ExitMalformedLocation = 21 // A root location could not be decoded
	ExitArchiveError      = 22 // An archive root could not be mounted
	ExitWalkError         = 23 // A root could not be traversed
	ExitDataAccessError   = 24 // SQL template call failed
)

const (
	// FileScheme prefixes locations of directory-backed resources.
	FileScheme = "file:"

	// JarScheme and ZipScheme mark URIs that point inside an archive.
	JarScheme = "jar:"
	ZipScheme = "zip:"

	// ArchiveEntrySeparator splits an archive URI into the archive file and
	// the path of the entry inside it.
	ArchiveEntrySeparator = "!/"

	// SearchPathEnv names the environment variable holding the default
	// search path (an OS path list of directories and archives).
	SearchPathEnv = "PGSCAN_PATH"
)
