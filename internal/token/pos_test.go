package token

import "testing"

func TestMakePosRoundTrip(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{42, 7},
		{MaxLines, 1},
		{1, MaxCols},
	}
	for _, c := range cases {
		p := MakePos(c.line, c.col)
		gotLine, gotCol := p.LineCol()
		if gotLine != c.line || gotCol != c.col {
			t.Errorf("MakePos(%d,%d).LineCol() = (%d,%d), want (%d,%d)",
				c.line, c.col, gotLine, gotCol, c.line, c.col)
		}
	}
}

func TestPosUnknown(t *testing.T) {
	var zero Pos
	if !zero.Unknown() {
		t.Error("zero Pos must be Unknown")
	}
	if MakePos(1, 1).Unknown() {
		t.Error("a fully-specified Pos must not be Unknown")
	}
}
