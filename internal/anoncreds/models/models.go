// Package models holds the AnonCreds objects and the result records returned
// by the registry. Field names follow the AnonCreds JSON wire format.
package models

import "encoding/json"

type Schema struct {
	IssuerID  string   `json:"issuerId"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	AttrNames []string `json:"attrNames"`
}

// CredentialDefinition keeps Value raw: it carries issuer public keys whose
// exact encoding must survive hashing untouched.
type CredentialDefinition struct {
	IssuerID string          `json:"issuerId"`
	SchemaID string          `json:"schemaId"`
	Type     string          `json:"type"`
	Tag      string          `json:"tag"`
	Value    json.RawMessage `json:"value"`
}

type RevocationRegistryDefinition struct {
	IssuerID     string                            `json:"issuerId"`
	RevocDefType string                            `json:"revocDefType"`
	CredDefID    string                            `json:"credDefId"`
	Tag          string                            `json:"tag"`
	Value        RevocationRegistryDefinitionValue `json:"value"`
}

type RevocationRegistryDefinitionValue struct {
	PublicKeys    json.RawMessage `json:"publicKeys"`
	MaxCredNum    int64           `json:"maxCredNum"`
	TailsLocation string          `json:"tailsLocation"`
	TailsHash     string          `json:"tailsHash"`
}

type RevocationStatusList struct {
	IssuerID           string `json:"issuerId"`
	RevRegDefID        string `json:"revRegDefId"`
	RevocationList     []int  `json:"revocationList"`
	CurrentAccumulator string `json:"currentAccumulator"`
	Timestamp          int64  `json:"timestamp"`
}

// Metadata is free-form resource or registration metadata.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetadataStatusListEndpoint = "statusListEndpoint"
	MetadataPreviousVersionID  = "previousVersionId"
	MetadataNextVersionID      = "nextVersionId"
)

// String returns the value under key when it is a non-empty string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
