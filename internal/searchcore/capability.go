package searchcore

// SearchCapability is the minimal set of operations an embedding host
// needs from the engine, independent of whether the engine lives in the
// same process or behind an IPC boundary. Engine satisfies it directly for
// in-process use; internal/searchcore/rpc wraps it for the subprocess case.
type SearchCapability interface {
	LoadIndex(dirPath string) error
	SearchText(query string, top int) ([]Hit, error)
}

// capabilityAdapter lets Engine's existing Load/Search
// method names satisfy SearchCapability without renaming the idiomatic Go
// API that callers within this module already use.
type capabilityAdapter struct {
	engine *Engine
}

// AsCapability wraps e so it can be passed anywhere a SearchCapability is
// expected, such as the in-process arm of the plugin-loading abstraction
// described for the host façade.
func (e *Engine) AsCapability() SearchCapability {
	return capabilityAdapter{engine: e}
}

func (c capabilityAdapter) LoadIndex(dirPath string) error {
	return c.engine.Load(dirPath)
}

func (c capabilityAdapter) SearchText(query string, top int) ([]Hit, error) {
	return c.engine.Search(query, top)
}

var _ SearchCapability = capabilityAdapter{}
