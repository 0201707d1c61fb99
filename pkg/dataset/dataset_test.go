package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	k := Key{FID: 7, SSR: 3}
	assert.Equal(t, "FID=7 SSR=3", k.String())
}

func TestKeyLess(t *testing.T) {
	assert.True(t, Key{FID: 1, SSR: 9}.Less(Key{FID: 2, SSR: 1}))
	assert.True(t, Key{FID: 1, SSR: 1}.Less(Key{FID: 1, SSR: 2}))
	assert.False(t, Key{FID: 2, SSR: 1}.Less(Key{FID: 1, SSR: 9}))
	assert.False(t, Key{FID: 1, SSR: 1}.Less(Key{FID: 1, SSR: 1}))
}

func TestNewCollectsFieldsFromRecords(t *testing.T) {
	records := []Record{
		{Key: Key{FID: 1, SSR: 1}, Values: map[string]string{"enct.sex": "1"}},
		{Key: Key{FID: 2, SSR: 2}, Values: map[string]string{"lab.crp": "3.14"}},
	}

	d := New("epic", []string{"enct.sex"}, records)

	assert.Equal(t, []string{"enct.sex", "lab.crp"}, d.Fields)
	assert.True(t, d.HasField("lab.crp"))
	assert.False(t, d.HasField("med.aspirin_pre"))
}

func TestDuplicateKeys(t *testing.T) {
	records := []Record{
		{Key: Key{FID: 7, SSR: 3}},
		{Key: Key{FID: 1, SSR: 1}},
		{Key: Key{FID: 7, SSR: 3}},
		{Key: Key{FID: 9, SSR: 2}},
		{Key: Key{FID: 9, SSR: 2}},
	}

	d := New("epic", nil, records)
	dups := d.DuplicateKeys()

	require.Len(t, dups, 2)
	assert.Equal(t, Key{FID: 7, SSR: 3}, dups[0])
	assert.Equal(t, Key{FID: 9, SSR: 2}, dups[1])
}

func TestDuplicateKeysNone(t *testing.T) {
	d := New("secutrial", nil, []Record{
		{Key: Key{FID: 1, SSR: 1}},
		{Key: Key{FID: 2, SSR: 2}},
	})

	assert.Empty(t, d.DuplicateKeys())
	assert.Equal(t, 2, d.Len())
}
