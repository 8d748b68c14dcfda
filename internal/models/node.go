// Package models contains domain types for the looking glass backend.
package models

// Node represents a network vantage point a user can run tests from.
// Nodes are loaded once at startup and are read-only afterwards.
type Node struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Location    string `json:"location" yaml:"location"`
	Provider    string `json:"provider" yaml:"provider"`
	ProviderURL string `json:"providerUrl,omitempty" yaml:"providerUrl"`
	// Tag selects the measurement probe closest to this node.
	Tag string `json:"tag" yaml:"tag"`
}
