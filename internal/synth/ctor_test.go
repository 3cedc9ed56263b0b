package synth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/synth"
)

func TestDefaultConstructorEmitsAloadInvokespecialReturn(t *testing.T) {
	diags := diag.NewCollector()
	pool := constpool.New(diags)

	class := symbols.ClassType("Widget")
	plan := &synth.ClassPlan{
		Class:  class,
		Access: symbols.AccPublic,
	}

	m := synth.DefaultConstructor(pool, diags, plan)

	require.False(t, diags.Failed())
	assert.NotNil(t, m.Code)
	assert.Equal(t, []byte{0x2a, 0xb7, byte(m.Code.Bytes[2]), byte(m.Code.Bytes[3]), 0xb1}, m.Code.Bytes,
		"expected aload_0; invokespecial <idx>; return")
}

func TestDefaultConstructorAccessMirrorsClassButDropsStaticAbstract(t *testing.T) {
	diags := diag.NewCollector()
	pool := constpool.New(diags)

	class := symbols.ClassType("Widget")
	plan := &synth.ClassPlan{
		Class:  class,
		Access: symbols.AccPublic | symbols.AccStatic,
	}

	m := synth.DefaultConstructor(pool, diags, plan)
	assert.Equal(t, symbols.AccPublic, int(m.AccessFlags))
}

func TestNeedsDefaultConstructorReflectsExplicitCtor(t *testing.T) {
	plan := &synth.ClassPlan{HasExplicitCtor: false}
	assert.True(t, plan.NeedsDefaultConstructor())

	plan.HasExplicitCtor = true
	assert.False(t, plan.NeedsDefaultConstructor())
}
