// Package datasource provides the outbound request capability the grid
// uses for every remote read and write.
package datasource

import "context"

// State is the terminal state of a datasource request.
type State string

const (
	StateDone  State = "Done"
	StateError State = "Error"
)

// Response is the normalized result of a datasource request. Any state
// other than Error counts as success.
type Response struct {
	State  State    `json:"state"`
	Errors []string `json:"errors,omitempty"`
	// Data carries the item list of read requests.
	Data []map[string]any `json:"data,omitempty"`
}

// OK reports whether the request succeeded.
func (r *Response) OK() bool {
	return r != nil && r.State != StateError
}

// ReplaceVariables interpolates template variables into query text.
type ReplaceVariables func(s string) string

// Request describes one remote call: which datasource to hit, the query
// owned by the datasource, and the mutation payload.
type Request struct {
	DatasourceUID string         `json:"datasource"`
	Query         map[string]any `json:"query,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// Requester is the external request capability. Implementations must treat
// a non-2xx transport response as an error return, and map datasource-level
// failures to Response.State == StateError.
type Requester interface {
	Request(ctx context.Context, req Request, replace ReplaceVariables) (*Response, error)
}
