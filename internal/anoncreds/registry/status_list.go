package registry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"didweb-anoncreds/internal/anoncreds/failure"
	"didweb-anoncreds/internal/anoncreds/fetcher"
	"didweb-anoncreds/internal/anoncreds/models"
	"didweb-anoncreds/pkg/requestcontext"
)

// GetRevocationStatusList resolves the revocation registry definition, reads
// its statusListEndpoint metadata and fetches "<endpoint>/<timestamp>". The
// host answers with the newest list at or before timestamp. Status lists are
// not content addressed, so only the envelope shape is checked.
func (r *Registry) GetRevocationStatusList(ctx context.Context, revRegDefID string, timestamp int64) models.GetRevocationStatusListResult {
	start := time.Now()
	policy := fetcher.RevocationStatusListPolicy

	list, meta, err := r.fetchStatusList(ctx, revRegDefID, timestamp, policy)
	resolution := r.observe(ctx, policy.KindPath, revRegDefID, err, start)
	if err != nil {
		return models.GetRevocationStatusListResult{
			ResolutionMetadata:           resolution,
			RevocationStatusListMetadata: models.Metadata{},
		}
	}
	return models.GetRevocationStatusListResult{
		RevocationStatusList:         list,
		ResolutionMetadata:           resolution,
		RevocationStatusListMetadata: meta,
	}
}

func (r *Registry) fetchStatusList(ctx context.Context, revRegDefID string, timestamp int64, policy fetcher.Policy) (*models.RevocationStatusList, models.Metadata, error) {
	def := r.GetRevocationRegistryDefinition(ctx, revRegDefID)
	base, ok := def.RevocationRegistryDefinitionMetadata.String(models.MetadataStatusListEndpoint)
	if !ok {
		return nil, nil, failure.Newf(failure.ServiceNotFound,
			"No revocation status list endpoint has been found for %s", revRegDefID)
	}

	env, err := r.fetcher.FetchURL(ctx, fmt.Sprintf("%s/%d", base, timestamp), policy)
	if err != nil {
		return nil, nil, err
	}
	var list models.RevocationStatusList
	if err := env.Decode(&list); err != nil {
		return nil, nil, err
	}
	return &list, env.ResourceMetadata, nil
}

// RegisterRevocationStatusList stamps the list with the current time and links
// it to the newest published version. The sequencer hands out strictly
// increasing timestamps per definition, so two registrations never share a
// version key. Claims are not publications: the predecessor always comes from
// the published lookup at the claimed timestamp. Existing versions are never
// updated: nextVersionId is always empty.
func (r *Registry) RegisterRevocationStatusList(ctx context.Context, opts models.RegisterRevocationStatusListOptions) (models.RegisterRevocationStatusListResult, error) {
	list := opts.RevocationStatusList
	kind := fetcher.RevocationStatusListPolicy.KindPath
	now := requestcontext.Now(ctx).Unix()

	claim, err := r.sequencer.Claim(ctx, list.RevRegDefID, now)
	if err != nil {
		r.countRegistration(kind, models.StateFailed)
		r.logger.ErrorContext(ctx, "status list version claim failed",
			"request_id", requestcontext.RequestID(ctx),
			"revocation_registry_definition_id", list.RevRegDefID,
			"error", err,
		)
		return models.RegisterRevocationStatusListResult{
			RevocationStatusListState: models.RevocationStatusListState{
				State:                models.StateFailed,
				Reason:               err.Error(),
				RevocationStatusList: &list,
			},
			RegistrationMetadata:         models.Metadata{},
			RevocationStatusListMetadata: models.Metadata{},
		}, err
	}
	list.Timestamp = claim.Timestamp

	// Lookup failures only mean there is no published predecessor.
	latest := r.GetRevocationStatusList(ctx, list.RevRegDefID, list.Timestamp)

	var previous int64
	hasPrevious := false
	if published := latest.RevocationStatusList; published != nil {
		previous, hasPrevious = published.Timestamp, true
		if previous >= list.Timestamp {
			list.Timestamp = previous + 1
		}
	}

	previousVersionID := ""
	if hasPrevious {
		previousVersionID = strconv.FormatInt(previous, 10)
	}

	r.countRegistration(kind, models.StateFinished)
	r.logger.DebugContext(ctx, "revocation status list registered",
		"revocation_registry_definition_id", list.RevRegDefID,
		"timestamp", list.Timestamp,
		"previous_version_id", previousVersionID,
	)
	return models.RegisterRevocationStatusListResult{
		RevocationStatusListState: models.RevocationStatusListState{
			State:                models.StateFinished,
			RevocationStatusList: &list,
			Timestamp:            strconv.FormatInt(list.Timestamp, 10),
		},
		RegistrationMetadata: models.Metadata{},
		RevocationStatusListMetadata: models.Metadata{
			models.MetadataPreviousVersionID: previousVersionID,
			models.MetadataNextVersionID:     "",
		},
	}, nil
}
