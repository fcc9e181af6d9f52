// Package identifier encodes and decodes did:web composite resource identifiers
//
//	did:web:<method-specific-id>?service=<serviceName>&relativeRef=/<kind>/<resourceId>
//
// and computes the content-addressed resource ids embedded in them.
package identifier

import (
	"regexp"
	"strings"

	"didweb-anoncreds/internal/anoncreds/failure"
)

const (
	// MethodPrefix is the only DID method this codec accepts.
	MethodPrefix = "did:web:"

	ParamService     = "service"
	ParamRelativeRef = "relativeRef"
)

var didWebRegex = regexp.MustCompile(`^did:web:[^/?#]+$`)

// CompositeIdentifier is a parsed resource identifier.
type CompositeIdentifier struct {
	DID         string
	ServiceName string
	RelativeRef string
}

// ResourceID is the final path segment of the relative reference.
func (c CompositeIdentifier) ResourceID() string {
	return lastSegment(c.RelativeRef)
}

func (c CompositeIdentifier) String() string {
	return Format(c.DID, c.ServiceName, c.RelativeRef)
}

// Format builds an identifier string. Values are written verbatim.
func Format(did, serviceName, relativeRef string) string {
	return did + "?" + ParamService + "=" + serviceName + "&" + ParamRelativeRef + "=" + relativeRef
}

// Parse decodes an identifier. Query parameter order does not matter and
// unknown parameters are ignored; service and relativeRef must each appear
// exactly once. Values are taken verbatim, matching Format: no
// percent-decoding and no '+' to space translation.
func Parse(identifier string) (CompositeIdentifier, error) {
	if !strings.HasPrefix(identifier, MethodPrefix) {
		return CompositeIdentifier{}, failure.Newf(failure.MalformedIdentifier,
			"%s is not a did:web identifier", identifier)
	}

	did, rawQuery, found := strings.Cut(identifier, "?")
	if !found {
		return CompositeIdentifier{}, failure.Newf(failure.MalformedIdentifier,
			"%s is not a valid resource identifier: missing query", identifier)
	}
	if !didWebRegex.MatchString(did) {
		return CompositeIdentifier{}, failure.Newf(failure.MalformedIdentifier,
			"%s is not a valid did:web DID", did)
	}
	rawQuery, _, _ = strings.Cut(rawQuery, "#")

	values := rawQueryValues(rawQuery)

	service, ok := single(values, ParamService)
	if !ok {
		return CompositeIdentifier{}, failure.Newf(failure.MalformedIdentifier,
			"no valid %s query present in the ID", ParamService)
	}
	relativeRef, ok := single(values, ParamRelativeRef)
	if !ok {
		return CompositeIdentifier{}, failure.Newf(failure.MalformedIdentifier,
			"no valid %s query present in the ID", ParamRelativeRef)
	}
	if lastSegment(relativeRef) == "" {
		return CompositeIdentifier{}, failure.Newf(failure.MalformedIdentifier,
			"could not get resource id from relativeRef %q", relativeRef)
	}

	return CompositeIdentifier{DID: did, ServiceName: service, RelativeRef: relativeRef}, nil
}

// rawQueryValues splits a query into key/value pairs without unescaping.
func rawQueryValues(rawQuery string) map[string][]string {
	values := make(map[string][]string)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		values[key] = append(values[key], value)
	}
	return values
}

// single returns the only non-empty value of key.
func single(values map[string][]string, key string) (string, bool) {
	v := values[key]
	if len(v) != 1 || v[0] == "" {
		return "", false
	}
	return v[0], true
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
