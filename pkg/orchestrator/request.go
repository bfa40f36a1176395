package orchestrator

// Request is the caller-supplied description of one render submission,
// per the startRender control API.
type Request struct {
	RouteFilePath string
	RouteFilename string
	OutputDir     string
	OutputID      string
	UserName      string
	Priority      int
}

// Callbacks are dispatched from a job's own execution context;
// invocations of a single job's callbacks are serialized.
type Callbacks struct {
	OnProgress    func(progress int, message string)
	OnStageChange func(stage string, progress int, message string)
	OnError       func(kind string, detail string)
	OnComplete    func(completion Completion)
}
