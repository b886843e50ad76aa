package session

// LlamaBuilt reports whether the in-process llama engine was compiled in.
func LlamaBuilt() bool { return llamaBuilt }
