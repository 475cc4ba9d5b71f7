package model

import "time"

// ExportBundle is the JSON envelope written by the export subcommand.
type ExportBundle struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Count       int          `json:"count"`
	Evaluations []Evaluation `json:"evaluations"`
}
