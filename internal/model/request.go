package model

// RegisterRequest asks the worker to compile and cache a program under a
// name so later execute requests can invoke it. Registration is
// fire-and-forget: there is no typed response, and failures surface only
// through diagnostics.
type RegisterRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// OutputSpec names where one execution result is published and whether
// the caller wants the result's serialized tensor metadata echoed back in
// the response.
type OutputSpec struct {
	ID           RemoteObjectID `json:"id"`
	NeedMetadata bool           `json:"need_metadata"`
}

// ExecuteRequest invokes one entry function of a previously registered
// program. Inputs and Outputs are ordered; the response metadata list
// follows the Outputs order.
type ExecuteRequest struct {
	Program  string           `json:"program"`
	Function string           `json:"function"`
	Inputs   []RemoteObjectID `json:"inputs"`
	Outputs  []OutputSpec     `json:"outputs"`
}

// ExecuteResult is delivered through the completion callback exactly once
// per execute request. Metadata holds one serialized entry per output
// that requested it, in request order, and is meaningful only when OK is
// true.
type ExecuteResult struct {
	OK       bool     `json:"ok"`
	Metadata []string `json:"metadata"`
}
