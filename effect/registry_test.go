package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/mirage-choice/core"
)

func TestBuiltin_Order(t *testing.T) {
	r := Builtin()
	assert.Equal(t, []string{IDClassic, IDShuffle, IDSlot, IDSlide, IDCardFlip, IDConstellation, IDLion}, r.IDs())

	d, ok := r.Lookup(IDLion)
	require.True(t, ok)
	assert.Equal(t, "ライオン", d.Title)

	h := newHarness(t, 1, nil)
	for _, def := range r.Definitions() {
		eff, err := r.Build(def.ID, h.env)
		require.NoError(t, err)
		assert.NotNil(t, eff)
	}
}

func TestRegistry_UnknownAndReplace(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("nope", Env{})
	require.ErrorIs(t, err, core.ErrUnknownEffect)

	r.Register(Definition{ID: "a", Title: "first", New: func(env Env) Effect { return NewClassic(env) }})
	r.Register(Definition{ID: "b", Title: "second", New: func(env Env) Effect { return NewSlot(env) }})
	r.Register(Definition{ID: "a", Title: "again", New: func(env Env) Effect { return NewSlide(env) }})

	assert.Equal(t, []string{"a", "b"}, r.IDs())
	d, _ := r.Lookup("a")
	assert.Equal(t, "again", d.Title)

	ids := r.IDs()
	ids[0] = "mutated"
	assert.Equal(t, "a", r.IDs()[0])
}
