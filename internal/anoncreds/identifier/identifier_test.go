package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didweb-anoncreds/internal/anoncreds/failure"
)

func TestParse(t *testing.T) {
	t.Run("valid identifier", func(t *testing.T) {
		id, err := Parse("did:web:ca.dev.2060.io?service=anoncreds&relativeRef=/schema/1234")
		require.NoError(t, err)
		assert.Equal(t, "did:web:ca.dev.2060.io", id.DID)
		assert.Equal(t, "anoncreds", id.ServiceName)
		assert.Equal(t, "/schema/1234", id.RelativeRef)
		assert.Equal(t, "1234", id.ResourceID())
	})

	t.Run("parameter order does not matter", func(t *testing.T) {
		a, err := Parse("did:web:example.com?service=anoncreds&relativeRef=/credDef/abc")
		require.NoError(t, err)
		b, err := Parse("did:web:example.com?relativeRef=/credDef/abc&service=anoncreds")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("path-based did and port", func(t *testing.T) {
		id, err := Parse("did:web:example.com%3A8443:issuers:alice?service=anoncreds&relativeRef=/revRegDef/xyz")
		require.NoError(t, err)
		assert.Equal(t, "did:web:example.com%3A8443:issuers:alice", id.DID)
		assert.Equal(t, "xyz", id.ResourceID())
	})

	t.Run("unknown parameters are ignored", func(t *testing.T) {
		id, err := Parse("did:web:example.com?service=anoncreds&version=2&relativeRef=/schema/abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", id.ResourceID())
	})

	t.Run("fragment is not part of the reference", func(t *testing.T) {
		id, err := Parse("did:web:example.com?service=anoncreds&relativeRef=/schema/abc#frag")
		require.NoError(t, err)
		assert.Equal(t, "/schema/abc", id.RelativeRef)
	})

	t.Run("values are not unescaped", func(t *testing.T) {
		id, err := Parse("did:web:example.com?service=%zz&relativeRef=/schema/a+b%2Fc")
		require.NoError(t, err)
		assert.Equal(t, "%zz", id.ServiceName)
		assert.Equal(t, "/schema/a+b%2Fc", id.RelativeRef)
	})
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":                    "",
		"other method":             "did:key:z6Mk?service=anoncreds&relativeRef=/schema/abc",
		"not a did":                "https://example.com/schema/abc",
		"no query":                 "did:web:example.com",
		"empty method specific id": "did:web:?service=anoncreds&relativeRef=/schema/abc",
		"did with path":            "did:web:example.com/path?service=anoncreds&relativeRef=/schema/abc",
		"missing service":          "did:web:example.com?relativeRef=/schema/abc",
		"empty service":            "did:web:example.com?service=&relativeRef=/schema/abc",
		"duplicated service":       "did:web:example.com?service=a&service=b&relativeRef=/schema/abc",
		"missing relativeRef":      "did:web:example.com?service=anoncreds",
		"duplicated relativeRef":   "did:web:example.com?service=anoncreds&relativeRef=/a/1&relativeRef=/b/2",
		"relativeRef without id":   "did:web:example.com?service=anoncreds&relativeRef=/schema/",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.Equal(t, failure.MalformedIdentifier, failure.CategoryOf(err))
		})
	}
}

func TestFormat(t *testing.T) {
	got := Format("did:web:example.com", "anoncreds", "/schema/abc")
	assert.Equal(t, "did:web:example.com?service=anoncreds&relativeRef=/schema/abc", got)
}

func TestFormatParseRoundTrip(t *testing.T) {
	inputs := []CompositeIdentifier{
		{DID: "did:web:example.com", ServiceName: "anoncreds", RelativeRef: "/schema/3Ea1"},
		{DID: "did:web:example.com:issuers:1", ServiceName: "resources", RelativeRef: "/credDef/F00"},
		{DID: "did:web:localhost%3A8080", ServiceName: "anoncreds", RelativeRef: "/v1/revRegDef/zz"},
		{DID: "did:web:example.com", ServiceName: "anoncreds", RelativeRef: "id-only"},
		{DID: "did:web:example.com", ServiceName: "anoncreds", RelativeRef: "/schema/a+b"},
		{DID: "did:web:example.com", ServiceName: "anoncreds", RelativeRef: "/schema/a%20b"},
	}
	for _, in := range inputs {
		t.Run(in.String(), func(t *testing.T) {
			out, err := Parse(Format(in.DID, in.ServiceName, in.RelativeRef))
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}
