package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(v string) *string { return &v }

func TestIdentityKeyDeterministic(t *testing.T) {
	first := IdentityKey(5, strptr("M"), strptr("red"))
	second := IdentityKey(5, strptr("M"), strptr("red"))
	assert.Equal(t, first, second)
}

func TestIdentityKeyDistinguishesTriples(t *testing.T) {
	base := IdentityKey(5, strptr("M"), strptr("red"))

	assert.NotEqual(t, base, IdentityKey(5, strptr("L"), strptr("red")))
	assert.NotEqual(t, base, IdentityKey(5, strptr("M"), strptr("blue")))
	assert.NotEqual(t, base, IdentityKey(6, strptr("M"), strptr("red")))
}

func TestIdentityKeyAbsentVariantIsNotEmptyString(t *testing.T) {
	absent := IdentityKey(5, nil, strptr("red"))
	empty := IdentityKey(5, strptr(""), strptr("red"))

	assert.NotEqual(t, absent, empty)
}

func TestIdentityKeyBothVariantsAbsent(t *testing.T) {
	assert.Equal(t, IdentityKey(7, nil, nil), IdentityKey(7, nil, nil))
	assert.NotEqual(t, IdentityKey(7, nil, nil), IdentityKey(7, strptr(""), nil))
}
