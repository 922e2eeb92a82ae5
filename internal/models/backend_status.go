package models

import "time"

// BackendStatus is the last observed reachability of the predictor backend.
type BackendStatus struct {
	ID          int       `json:"id"`
	Address     string    `json:"address"`
	Reachable   bool      `json:"reachable"`
	LastError   string    `json:"last_error,omitempty"`
	Failures    int       `json:"consecutive_failures"`
	CheckedAt   time.Time `json:"checked_at"`
	ReachableAt time.Time `json:"reachable_at,omitempty"`
}
