package domain

// SearchRequest is the body of POST /search.
// Dates are kept as strings; format checking is left to the database.
type SearchRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate reports a *ValidationError when either bound is empty.
func (r SearchRequest) Validate() error {
	if r.Start == "" {
		return &ValidationError{Field: "start"}
	}
	if r.End == "" {
		return &ValidationError{Field: "end"}
	}
	return nil
}
