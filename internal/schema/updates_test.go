package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/schema"
)

func TestParseTokenMetadataUpdates(t *testing.T) {
	// The updates endpoint reports token_id as a JSON number, unlike the
	// big-map keys endpoint where it is a string.
	raw := `[{
		"contract": {"address": "KT1Token"},
		"content": {"value": {"token_id": 7, "token_info": {"": "697066733a2f2f516d54657374"}}}
	}]`

	updates, err := schema.ParseTokenMetadataUpdates(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, updates, 1)

	assert.Equal(t, "KT1Token", updates[0].Contract)
	assert.Equal(t, "7", updates[0].TokenID)
	assert.Equal(t, "697066733a2f2f516d54657374", updates[0].TokenInfo[""])
}

func TestParseTokenMetadataUpdatesStringTokenID(t *testing.T) {
	raw := `[{
		"contract": {"address": "KT1Token"},
		"content": {"value": {"token_id": "12", "token_info": {"": "00"}}}
	}]`

	updates, err := schema.ParseTokenMetadataUpdates(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, "12", updates[0].TokenID)
}

func TestParseTokenMetadataUpdatesRejectsBadEvent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing contract",
			raw:  `[{"content": {"value": {"token_id": 7, "token_info": {}}}}]`,
		},
		{
			name: "missing content value",
			raw:  `[{"contract": {"address": "KT1Token"}, "content": {}}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseTokenMetadataUpdates(json.RawMessage(tt.raw))

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, schema.SourceTokenMetadataUpdates, validationErr.Source)
		})
	}
}

func TestParseAssetMetadataUpdates(t *testing.T) {
	raw := `[
		{"contract": {"address": "KT1A"}, "content": {"key": "", "value": "697066733a2f2f516d54657374"}},
		{"contract": {"address": "KT1A"}, "content": {"key": "version", "value": "76312e30"}}
	]`

	updates, err := schema.ParseAssetMetadataUpdates(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, updates, 2)

	// The "" key is legal and carries the metadata URI
	assert.Equal(t, "", updates[0].Key)
	assert.Equal(t, "697066733a2f2f516d54657374", updates[0].Value)
	assert.Equal(t, "version", updates[1].Key)
}

func TestParseAssetMetadataUpdatesRejectsMissingValue(t *testing.T) {
	raw := `[{"contract": {"address": "KT1A"}, "content": {"key": ""}}]`

	_, err := schema.ParseAssetMetadataUpdates(json.RawMessage(raw))

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, schema.SourceAssetMetadataUpdates, validationErr.Source)
}
