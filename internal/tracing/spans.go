package tracing

// Span names.
const (
	SpanDispatch = "dispatch.execute"
	SpanRescan   = "dispatch.rescan"
	SpanBuild    = "registry.build"
)

// Span attribute keys.
const (
	AttrCommandName      = "command.name"
	AttrCommandStatic    = "command.static"
	AttrCommandRescanned = "command.rescanned"
	AttrCommandOutcome   = "command.outcome"

	AttrBuildCandidates = "build.candidates"
	AttrBuildRegistered = "build.registered"
	AttrBuildDuplicates = "build.duplicates"
	AttrBuildMissing    = "build.missing_instance"
)
