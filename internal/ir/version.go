package ir

// Version constants recorded with every stored run.
const (
	// SchemaVersion is the version of the canonical record layout.
	SchemaVersion = "1"

	// ToolVersion is the tlbench driver version.
	ToolVersion = "0.1.0"
)
