package invindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Posting{
		{DocID: 1, TF: 3},
		{DocID: 2, TF: 1},
		{DocID: 5, TF: 7},
	}

	decoded, err := Decode(Encode(p))
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestDecodeEmptyIsNil(t *testing.T) {
	decoded, err := Decode(nil)
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeDetectsLegacyFormat(t *testing.T) {
	p := Posting{{DocID: 10, TF: 1}, {DocID: 20, TF: 1}, {DocID: 30, TF: 1}}

	legacy := EncodeLegacy(p)
	require.Equal(t, "10,20,30", string(legacy))

	decoded, err := Decode(legacy)
	require.NoError(t, err)
	require.Equal(t, p.DocIDs(), decoded.DocIDs())
	for _, e := range decoded {
		require.Equal(t, uint64(1), e.TF, "legacy entries carry an implicit tf of 1")
	}
}

func TestDecodeMalformedLegacyEntry(t *testing.T) {
	_, err := Decode([]byte("1,x,3"))
	require.Error(t, err)
}

func TestPostingDocIDs(t *testing.T) {
	p := Posting{{DocID: 4, TF: 2}, {DocID: 9, TF: 1}}
	require.Equal(t, []int64{4, 9}, p.DocIDs())
}

func TestPostingContains(t *testing.T) {
	p := Posting{{DocID: 4, TF: 2}}

	e, ok := p.Contains(4)
	require.True(t, ok)
	require.Equal(t, uint64(2), e.TF)

	_, ok = p.Contains(5)
	require.False(t, ok)
}

func TestPostingUpsertAddsNewEntry(t *testing.T) {
	p := Posting{{DocID: 1, TF: 1}}

	updated, changed := p.Upsert(2, 5)
	require.True(t, changed)
	require.Len(t, updated, 2)
	e, ok := updated.Contains(2)
	require.True(t, ok)
	require.Equal(t, uint64(5), e.TF)
}

func TestPostingUpsertIsIdempotent(t *testing.T) {
	p := Posting{{DocID: 1, TF: 3}}

	updated, changed := p.Upsert(1, 3)
	require.False(t, changed)
	require.Equal(t, p, updated)
}

func TestPostingUpsertUpdatesExistingTF(t *testing.T) {
	p := Posting{{DocID: 1, TF: 3}}

	updated, changed := p.Upsert(1, 9)
	require.True(t, changed)
	e, ok := updated.Contains(1)
	require.True(t, ok)
	require.Equal(t, uint64(9), e.TF)
}
