package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7mind/jbcgen/internal/ast"
	"github.com/7mind/jbcgen/internal/codegen"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
	"github.com/7mind/jbcgen/internal/value"
)

func newTestContext(t *testing.T) *codegen.Context {
	t.Helper()
	diags := diag.NewCollector()
	pool := constpool.New(diags)
	emit := method.New(diags, token.Pos(0))
	class := symbols.ClassType("Widget")
	ctx := codegen.NewContext(emit, pool, diags, class)
	return ctx
}

func TestEmitExprIntLiteralPushesBipush(t *testing.T) {
	ctx := newTestContext(t)
	ctx.EmitExpr(&ast.Literal{Type: symbols.Int, Value: value.I4(100)})

	require.False(t, ctx.Diags.Failed())
	assert.Equal(t, 1, ctx.Emit.StackDepth())
	assert.Equal(t, 1, ctx.Emit.MaxStack())
	assert.Equal(t, []byte{byte(method.BIPUSH), 100}, ctx.Emit.Code)
}

func TestDeclareParamThenIfStatementRecordsMergeFrame(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Emit.NoteLocalSlot(0, 1) // this
	thisVar := &symbols.Variable{LocalIndex: 0, Type: ctx.Class}
	ctx.DeclareParam(thisVar)
	p := &symbols.Variable{LocalIndex: 1, Type: symbols.Int}
	ctx.Emit.NoteLocalSlot(1, 1)
	ctx.DeclareParam(p)

	stmt := &ast.If{
		Cond: &ast.Literal{Type: symbols.Boolean, Value: true},
		Then: &ast.Block{},
	}
	ctx.EmitStmt(stmt)

	require.False(t, ctx.Diags.Failed())
	entries := ctx.Frames.Entries()
	require.NotEmpty(t, entries, "an if-statement with no else must record a merge frame at its join point")
	assert.Len(t, entries[0].Frame.Locals, 2, "this + the declared int parameter are both live at the merge point")
}

func TestExceptionTableEmptyBeforeAnyTry(t *testing.T) {
	ctx := newTestContext(t)
	assert.Empty(t, ctx.ExceptionTable())
}
