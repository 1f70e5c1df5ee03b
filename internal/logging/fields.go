package logging

// Structured log keys.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"

	// Configuration fields.
	FieldFlavor     = "flavor"
	FieldFocusMarks = "focus_marks"
	FieldLogLevel   = "log_level"

	// Engine fields.
	FieldBlock     = "block"
	FieldPattern   = "pattern"
	FieldStart     = "start"
	FieldEnd       = "end"
	FieldOffset    = "offset"
	FieldTarget    = "target"
	FieldDelimiter = "delimiter"
	FieldReason    = "reason"
	FieldOutcome   = "outcome"

	// Reconciliation statistics.
	FieldKept     = "kept"
	FieldReplaced = "replaced"
	FieldAppended = "appended"
	FieldRemoved  = "removed"
	FieldFallback = "fallback"

	// Round-trip check fields.
	FieldFiles = "files"
	FieldJobs  = "jobs"
	FieldLine  = "line"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
