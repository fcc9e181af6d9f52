package registry

import (
	"context"

	"didweb-anoncreds/internal/anoncreds/fetcher"
	"didweb-anoncreds/internal/anoncreds/identifier"
	"didweb-anoncreds/internal/anoncreds/models"
)

// identifierFor builds "<issuerID>?service=<svc>&relativeRef=/<kindPath>/<resourceId>".
func (r *Registry) identifierFor(issuerID, kindPath string, object any) (string, error) {
	resourceID, err := identifier.ComputeResourceID(object)
	if err != nil {
		return "", err
	}
	return identifier.Format(issuerID, r.serviceName, "/"+kindPath+"/"+resourceID), nil
}

func (r *Registry) GetSchema(ctx context.Context, schemaID string) models.GetSchemaResult {
	schema, meta, resolution := resolve[models.Schema](ctx, r, schemaID, fetcher.SchemaPolicy)
	return models.GetSchemaResult{
		Schema:             schema,
		SchemaID:           schemaID,
		ResolutionMetadata: resolution,
		SchemaMetadata:     meta,
	}
}

// RegisterSchema computes the schema identifier. Nothing is published.
func (r *Registry) RegisterSchema(ctx context.Context, opts models.RegisterSchemaOptions) (models.RegisterSchemaResult, error) {
	schema := opts.Schema
	kind := fetcher.SchemaPolicy.KindPath
	id, err := r.identifierFor(schema.IssuerID, kind, schema)
	if err != nil {
		r.countRegistration(kind, models.StateFailed)
		return models.RegisterSchemaResult{
			SchemaState:          models.SchemaState{State: models.StateFailed, Reason: describe(err), Schema: &schema},
			RegistrationMetadata: models.Metadata{},
			SchemaMetadata:       models.Metadata{},
		}, err
	}

	r.countRegistration(kind, models.StateFinished)
	r.logger.DebugContext(ctx, "schema registered", "schema_id", id)
	return models.RegisterSchemaResult{
		SchemaState:          models.SchemaState{State: models.StateFinished, Schema: &schema, SchemaID: id},
		RegistrationMetadata: models.Metadata{},
		SchemaMetadata:       models.Metadata{},
	}, nil
}

func (r *Registry) GetCredentialDefinition(ctx context.Context, credentialDefinitionID string) models.GetCredentialDefinitionResult {
	def, meta, resolution := resolve[models.CredentialDefinition](ctx, r, credentialDefinitionID, fetcher.CredentialDefinitionPolicy)
	return models.GetCredentialDefinitionResult{
		CredentialDefinition:         def,
		CredentialDefinitionID:       credentialDefinitionID,
		ResolutionMetadata:           resolution,
		CredentialDefinitionMetadata: meta,
	}
}

// RegisterCredentialDefinition computes the credential definition identifier. Nothing is published.
func (r *Registry) RegisterCredentialDefinition(ctx context.Context, opts models.RegisterCredentialDefinitionOptions) (models.RegisterCredentialDefinitionResult, error) {
	def := opts.CredentialDefinition
	kind := fetcher.CredentialDefinitionPolicy.KindPath
	id, err := r.identifierFor(def.IssuerID, kind, def)
	if err != nil {
		r.countRegistration(kind, models.StateFailed)
		return models.RegisterCredentialDefinitionResult{
			CredentialDefinitionState: models.CredentialDefinitionState{
				State:                models.StateFailed,
				Reason:               describe(err),
				CredentialDefinition: &def,
			},
			RegistrationMetadata:         models.Metadata{},
			CredentialDefinitionMetadata: models.Metadata{},
		}, err
	}

	r.countRegistration(kind, models.StateFinished)
	r.logger.DebugContext(ctx, "credential definition registered", "credential_definition_id", id)
	return models.RegisterCredentialDefinitionResult{
		CredentialDefinitionState: models.CredentialDefinitionState{
			State:                  models.StateFinished,
			CredentialDefinition:   &def,
			CredentialDefinitionID: id,
		},
		RegistrationMetadata:         models.Metadata{},
		CredentialDefinitionMetadata: models.Metadata{},
	}, nil
}

func (r *Registry) GetRevocationRegistryDefinition(ctx context.Context, revRegDefID string) models.GetRevocationRegistryDefinitionResult {
	def, meta, resolution := resolve[models.RevocationRegistryDefinition](ctx, r, revRegDefID, fetcher.RevocationRegistryDefinitionPolicy)
	return models.GetRevocationRegistryDefinitionResult{
		RevocationRegistryDefinition:         def,
		RevocationRegistryDefinitionID:       revRegDefID,
		ResolutionMetadata:                   resolution,
		RevocationRegistryDefinitionMetadata: meta,
	}
}

// RegisterRevocationRegistryDefinition computes the revocation registry
// definition identifier. Nothing is published.
func (r *Registry) RegisterRevocationRegistryDefinition(ctx context.Context, opts models.RegisterRevocationRegistryDefinitionOptions) (models.RegisterRevocationRegistryDefinitionResult, error) {
	def := opts.RevocationRegistryDefinition
	kind := fetcher.RevocationRegistryDefinitionPolicy.KindPath
	id, err := r.identifierFor(def.IssuerID, kind, def)
	if err != nil {
		r.countRegistration(kind, models.StateFailed)
		return models.RegisterRevocationRegistryDefinitionResult{
			RevocationRegistryDefinitionState: models.RevocationRegistryDefinitionState{
				State:                        models.StateFailed,
				Reason:                       describe(err),
				RevocationRegistryDefinition: &def,
			},
			RegistrationMetadata:                 models.Metadata{},
			RevocationRegistryDefinitionMetadata: models.Metadata{},
		}, err
	}

	r.countRegistration(kind, models.StateFinished)
	r.logger.DebugContext(ctx, "revocation registry definition registered", "revocation_registry_definition_id", id)
	return models.RegisterRevocationRegistryDefinitionResult{
		RevocationRegistryDefinitionState: models.RevocationRegistryDefinitionState{
			State:                          models.StateFinished,
			RevocationRegistryDefinition:   &def,
			RevocationRegistryDefinitionID: id,
		},
		RegistrationMetadata:                 models.Metadata{},
		RevocationRegistryDefinitionMetadata: models.Metadata{},
	}, nil
}
