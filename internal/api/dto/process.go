package dto

import "time"

// ProcessResponse is one currently running process.
type ProcessResponse struct {
	PID       int       `json:"pid"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
}

// ProcessListResponse lists running processes in spawn order.
type ProcessListResponse struct {
	Items []ProcessResponse `json:"items"`
	Count int               `json:"count"`
}

// TerminateResponse reports how many processes were signaled.
type TerminateResponse struct {
	Terminated int `json:"terminated"`
}
