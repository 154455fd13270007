package pipeline

// PostProcessorContext carries the LLM output through the post-processing
// pipelines. It has a single owner: the caller creates one per request and
// passes it by pointer to each step.
type PostProcessorContext struct {
	// GenText is the text generated by the model. onStreamingEnd rewrites it.
	GenText string
	// CompiledVariables are the variable values of the compile pass.
	CompiledVariables map[string]string
	// LastTaskOutput receives the afterStreaming result.
	LastTaskOutput string
	// SavedFiles lists the workspace files written by saveFile.
	SavedFiles []string
}

// NewPostProcessorContext returns a context for genText.
func NewPostProcessorContext(genText string, vars map[string]string) *PostProcessorContext {
	if vars == nil {
		vars = map[string]string{}
	}
	return &PostProcessorContext{GenText: genText, CompiledVariables: vars}
}
