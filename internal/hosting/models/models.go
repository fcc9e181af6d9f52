// Package models holds the records kept by the resource host.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind is the relativeRef segment a resource is served under.
type Kind string

const (
	KindSchema                       Kind = "schema"
	KindCredentialDefinition         Kind = "credDef"
	KindRevocationRegistryDefinition Kind = "revRegDef"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindSchema, KindCredentialDefinition, KindRevocationRegistryDefinition:
		return true
	}
	return false
}

// Envelope is the stored and served body.
type Envelope struct {
	Resource         json.RawMessage `json:"resource"`
	ResourceMetadata map[string]any  `json:"resourceMetadata"`
}

// Resource is a content-addressed object published by an issuer.
type Resource struct {
	Kind       Kind
	ResourceID string
	IssuerID   string
	Envelope   Envelope
	CreatedAt  time.Time
}

// StatusList is one timestamped revocation status list version.
type StatusList struct {
	RevRegDefResourceID string
	Timestamp           int64
	IssuerID            string
	Envelope            Envelope
	CreatedAt           time.Time
}

// Event types.
const (
	EventResourcePublished   = "resource.published"
	EventStatusListPublished = "status_list.published"
)

// ResourcePublished is emitted after a resource or status list is stored.
type ResourcePublished struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Kind       string    `json:"kind"`
	ResourceID string    `json:"resourceId"`
	IssuerID   string    `json:"issuerId"`
	Timestamp  int64     `json:"timestamp,omitempty"`
	URL        string    `json:"url"`
	OccurredAt time.Time `json:"occurredAt"`
}

// PublishRequest is the PUT body for resources and status lists.
type PublishRequest struct {
	Resource         json.RawMessage `json:"resource"`
	ResourceMetadata map[string]any  `json:"resourceMetadata"`
}

// StatusListTimestamps lists the versions of one status list.
type StatusListTimestamps struct {
	RevRegDefResourceID string  `json:"revRegDefResourceId"`
	Timestamps          []int64 `json:"timestamps"`
}
