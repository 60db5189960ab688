package model

// OKResponse acknowledges a mutation that returns no record.
type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
