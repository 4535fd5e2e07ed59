package ddg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-trace-deps/pkg/cfg"
)

func renderFixture(t *testing.T) *Analysis {
	t.Helper()
	n := &cfg.Node{Addr: 0x1000, FinalStates: []*cfg.FinalState{{
		JumpKind: cfg.JumpOrdinary,
		NextIP:   cfg.Symbolic,
		Actions: []cfg.Action{
			regWrite(0x1000, 0, 8, 8),
			regRead(0x1000, 1, 8, 8),
		},
	}}}
	g := cfg.NewGraph(true)
	g.AddNode(n)
	return mustAnalyze(t, g, Options{})
}

func TestWriteStatementGraph(t *testing.T) {
	a := renderFixture(t)

	var buf bytes.Buffer
	require.NoError(t, a.WriteStatementGraph(&buf))

	got := buf.String()
	assert.Equal(t, "0x1000[0] -> 0x1000[1]  [count=0 type=reg]\n", got)
}

func TestWriteStatementDot(t *testing.T) {
	a := renderFixture(t)

	var buf bytes.Buffer
	require.NoError(t, a.WriteStatementDot(&buf))

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "digraph statements {\n"))
	assert.True(t, strings.HasSuffix(got, "}\n"))
	assert.Contains(t, got, `"0x1000[0]" -> "0x1000[1]"`)
}

func TestWriteDataGraph(t *testing.T) {
	a := renderFixture(t)

	var buf bytes.Buffer
	require.NoError(t, a.WriteDataGraph(&buf, false))

	assert.Contains(t, buf.String(), "<const @ 0x1000[0]> -> <reg(8:8) @ 0x1000[0]>")

	// Rendering is deterministic across calls.
	var again bytes.Buffer
	require.NoError(t, a.WriteDataGraph(&again, false))
	assert.Equal(t, buf.String(), again.String())
}
