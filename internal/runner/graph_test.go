package runner

import (
	"testing"

	"github.com/emicklei/dot"
	"github.com/stretchr/testify/assert"
)

func TestGraph(t *testing.T) {
	g := Graph()

	out := g.String()
	for _, node := range []string{"Fetch", "Filter", "Dispatch", "Report", "Succeeded", "Failed", "Aborted"} {
		assert.Contains(t, out, node)
	}

	mermaid := dot.MermaidGraph(g, dot.MermaidTopDown)
	assert.Contains(t, mermaid, "No device with tag")
	assert.Contains(t, mermaid, "Run canceled")
}
