package generation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestArtifactKeyLayout(t *testing.T) {
	assert.Equal(t, "abc/sketch.jpg", ArtifactKey("abc", RoleSketch))
	assert.Equal(t, "abc/step_1.jpg", ArtifactKey("abc", RoleFinalDesign))
	assert.Equal(t, "abc/step_2.jpg", ArtifactKey("abc", RoleTechFlat))
	assert.Equal(t, "abc/step_3.jpg", ArtifactKey("abc", RoleTryOn))
}

func TestArtifactKeyInjectiveOverRoles(t *testing.T) {
	sid := uuid.NewString()
	seen := map[string]Role{}
	for _, r := range []Role{RoleSketch, RoleFinalDesign, RoleTechFlat, RoleTryOn} {
		k := ArtifactKey(sid, r)
		if prev, dup := seen[k]; dup {
			t.Fatalf("key collision: %s and %s both map to %q", prev, r, k)
		}
		seen[k] = r
	}
}

func TestArtifactKeyDistinctAcrossSessions(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	for _, r := range GeneratedRoles() {
		assert.NotEqual(t, ArtifactKey(a, r), ArtifactKey(b, r))
	}
}

func TestGeneratedRolesOrderAndCopy(t *testing.T) {
	roles := GeneratedRoles()
	assert.Equal(t, []Role{RoleFinalDesign, RoleTechFlat, RoleTryOn}, roles)

	roles[0] = RoleSketch
	assert.Equal(t, RoleFinalDesign, GeneratedRoles()[0])
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" try_on ")
	assert.True(t, ok)
	assert.Equal(t, RoleTryOn, r)

	_, ok = ParseRole("hero_shot")
	assert.False(t, ok)
}

func TestStateFor(t *testing.T) {
	assert.Equal(t, StatePending, StateFor(0))
	assert.Equal(t, StateInProgress, StateFor(1))
	assert.Equal(t, StateInProgress, StateFor(2))
	assert.Equal(t, StateCompleted, StateFor(3))
}
