package auth

import (
	"testing"

	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseGroup(t *testing.T) {
	assert.Equal(t, GroupPath{"Parents", "Admins"}, ParseGroup("/Parents//Admins/"))
	assert.Empty(t, ParseGroup(""))
}

func TestGroupPathWithin(t *testing.T) {
	cases := []struct {
		held, required string
		want           bool
	}{
		{"Parents", "Parents", true},
		{"Parents/Admins", "Parents", true},
		{"Parents/Admins/Ops", "Parents/Admins", true},
		{"Parents", "Parents/Admins", false},
		{"ParentsX", "Parents", false},
		{"Children", "Parents", false},
		{"Parents", "", false},
		{"parents", "Parents", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseGroup(tc.held).Within(ParseGroup(tc.required)), "%s within %s", tc.held, tc.required)
	}
}

func TestPredicates(t *testing.T) {
	parent := domain.Principal{SubjectID: "p", Groups: []string{"Parents"}}
	child := domain.Principal{SubjectID: "c", Groups: []string{"Children"}}
	nobody := domain.Principal{SubjectID: "n"}

	assert.True(t, AnyAuthenticated()(nobody))

	onlyParents := RequireAnyGroup(domain.GroupParents)
	assert.True(t, onlyParents(parent))
	assert.False(t, onlyParents(child))
	assert.False(t, onlyParents(nobody))

	either := RequireAnyGroup(domain.GroupParents, domain.GroupChildren)
	assert.True(t, either(child))

	assert.True(t, IsParent(parent))
	assert.False(t, IsParent(child))
}
