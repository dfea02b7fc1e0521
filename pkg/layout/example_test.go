package layout_test

import (
	"fmt"

	"github.com/matzehuels/slicetopo/pkg/layout"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

func ExampleGenerate() {
	s := topology.New("lab")
	b, _ := layout.Generate(s, layout.PresetBus, layout.Params{NodeCount: 3}, topology.Position{X: 0, Y: 0})

	for _, n := range b.Nodes {
		fmt.Printf("%s (%.0f,%.0f)\n", n.Name, n.Position.X, n.Position.Y)
	}
	fmt.Println(len(b.Connections), "connections")
	// Output:
	// PC0-t0 (-120,0)
	// PC1-t0 (0,0)
	// PC2-t0 (120,0)
	// 2 connections
}
