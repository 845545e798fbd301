package types

// ActionResponse answers lifecycle endpoints: {"error": false} on success.
type ActionResponse struct {
	Error bool `json:"error"`
}

// Ok is the canonical success answer.
func Ok() ActionResponse {
	return ActionResponse{Error: false}
}

// Failed is the canonical failure answer.
func Failed() ActionResponse {
	return ActionResponse{Error: true}
}
