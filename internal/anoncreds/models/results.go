package models

// Resolution error codes.
const (
	ErrorInvalid  = "invalid"
	ErrorNotFound = "notFound"
)

// Registration states.
const (
	StateFinished = "finished"
	StateFailed   = "failed"
)

// ResolutionMetadata is empty on success. On failure Error is one of
// ErrorInvalid or ErrorNotFound.
type ResolutionMetadata struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (m ResolutionMetadata) Failed() bool {
	return m.Error != ""
}

type GetSchemaResult struct {
	Schema             *Schema            `json:"schema,omitempty"`
	SchemaID           string             `json:"schemaId"`
	ResolutionMetadata ResolutionMetadata `json:"resolutionMetadata"`
	SchemaMetadata     Metadata           `json:"schemaMetadata"`
}

type GetCredentialDefinitionResult struct {
	CredentialDefinition         *CredentialDefinition `json:"credentialDefinition,omitempty"`
	CredentialDefinitionID       string                `json:"credentialDefinitionId"`
	ResolutionMetadata           ResolutionMetadata    `json:"resolutionMetadata"`
	CredentialDefinitionMetadata Metadata              `json:"credentialDefinitionMetadata"`
}

type GetRevocationRegistryDefinitionResult struct {
	RevocationRegistryDefinition         *RevocationRegistryDefinition `json:"revocationRegistryDefinition,omitempty"`
	RevocationRegistryDefinitionID       string                        `json:"revocationRegistryDefinitionId"`
	ResolutionMetadata                   ResolutionMetadata            `json:"resolutionMetadata"`
	RevocationRegistryDefinitionMetadata Metadata                      `json:"revocationRegistryDefinitionMetadata"`
}

type GetRevocationStatusListResult struct {
	RevocationStatusList         *RevocationStatusList `json:"revocationStatusList,omitempty"`
	ResolutionMetadata           ResolutionMetadata    `json:"resolutionMetadata"`
	RevocationStatusListMetadata Metadata              `json:"revocationStatusListMetadata"`
}

type RegisterSchemaOptions struct {
	Schema Schema
}

type RegisterCredentialDefinitionOptions struct {
	CredentialDefinition CredentialDefinition
}

type RegisterRevocationRegistryDefinitionOptions struct {
	RevocationRegistryDefinition RevocationRegistryDefinition
}

type RegisterRevocationStatusListOptions struct {
	RevocationStatusList RevocationStatusList
}

type SchemaState struct {
	State    string  `json:"state"`
	Reason   string  `json:"reason,omitempty"`
	Schema   *Schema `json:"schema,omitempty"`
	SchemaID string  `json:"schemaId,omitempty"`
}

type RegisterSchemaResult struct {
	SchemaState          SchemaState `json:"schemaState"`
	RegistrationMetadata Metadata    `json:"registrationMetadata"`
	SchemaMetadata       Metadata    `json:"schemaMetadata"`
}

type CredentialDefinitionState struct {
	State                  string                `json:"state"`
	Reason                 string                `json:"reason,omitempty"`
	CredentialDefinition   *CredentialDefinition `json:"credentialDefinition,omitempty"`
	CredentialDefinitionID string                `json:"credentialDefinitionId,omitempty"`
}

type RegisterCredentialDefinitionResult struct {
	CredentialDefinitionState    CredentialDefinitionState `json:"credentialDefinitionState"`
	RegistrationMetadata         Metadata                  `json:"registrationMetadata"`
	CredentialDefinitionMetadata Metadata                  `json:"credentialDefinitionMetadata"`
}

type RevocationRegistryDefinitionState struct {
	State                          string                        `json:"state"`
	Reason                         string                        `json:"reason,omitempty"`
	RevocationRegistryDefinition   *RevocationRegistryDefinition `json:"revocationRegistryDefinition,omitempty"`
	RevocationRegistryDefinitionID string                        `json:"revocationRegistryDefinitionId,omitempty"`
}

type RegisterRevocationRegistryDefinitionResult struct {
	RevocationRegistryDefinitionState    RevocationRegistryDefinitionState `json:"revocationRegistryDefinitionState"`
	RegistrationMetadata                 Metadata                          `json:"registrationMetadata"`
	RevocationRegistryDefinitionMetadata Metadata                          `json:"revocationRegistryDefinitionMetadata"`
}

type RevocationStatusListState struct {
	State                string                `json:"state"`
	Reason               string                `json:"reason,omitempty"`
	RevocationStatusList *RevocationStatusList `json:"revocationStatusList,omitempty"`
	Timestamp            string                `json:"timestamp,omitempty"`
}

type RegisterRevocationStatusListResult struct {
	RevocationStatusListState    RevocationStatusListState `json:"revocationStatusListState"`
	RegistrationMetadata         Metadata                  `json:"registrationMetadata"`
	RevocationStatusListMetadata Metadata                  `json:"revocationStatusListMetadata"`
}
