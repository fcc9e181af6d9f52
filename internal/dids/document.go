// Package dids resolves did:web DID documents over HTTPS.
package dids

import (
	"encoding/json"
)

// Document is the subset of a DID document this service reads.
type Document struct {
	Context            any                   `json:"@context,omitempty"`
	ID                 string                `json:"id"`
	AlsoKnownAs        []string              `json:"alsoKnownAs,omitempty"`
	Controller         any                   `json:"controller,omitempty"`
	VerificationMethod []*VerificationMethod `json:"verificationMethod,omitempty"`
	Service            []*Service            `json:"service,omitempty"`
}

type VerificationMethod struct {
	ID                 string         `json:"id"`
	Type               string         `json:"type"`
	Controller         string         `json:"controller"`
	PublicKeyBase58    string         `json:"publicKeyBase58,omitempty"`
	PublicKeyMultibase string         `json:"publicKeyMultibase,omitempty"`
	PublicKeyJwk       map[string]any `json:"publicKeyJwk,omitempty"`
}

// Service is a DID document service entry. Type and ServiceEndpoint are kept
// loosely typed because DID Core allows strings, sets and maps for both.
type Service struct {
	ID              string          `json:"id"`
	Type            any             `json:"type"`
	ServiceEndpoint json.RawMessage `json:"serviceEndpoint,omitempty"`
}

// FindService returns the service whose id equals the given id exactly.
func (d *Document) FindService(id string) (*Service, bool) {
	if d == nil {
		return nil, false
	}
	for _, svc := range d.Service {
		if svc != nil && svc.ID == id {
			return svc, true
		}
	}
	return nil, false
}

// EndpointURI returns the service endpoint when it is a plain string.
func (s *Service) EndpointURI() (string, bool) {
	if s == nil || len(s.ServiceEndpoint) == 0 {
		return "", false
	}
	var uri string
	if err := json.Unmarshal(s.ServiceEndpoint, &uri); err != nil {
		return "", false
	}
	return uri, true
}
