package topology_test

import (
	"fmt"

	"github.com/matzehuels/slicetopo/pkg/topology"
)

func ExampleStore() {
	s := topology.New("lab")
	a, _ := s.CreateNode(topology.Position{X: 0, Y: 0}, topology.NodePatch{Name: topology.Ptr("web")})
	b, _ := s.CreateNode(topology.Position{X: 200, Y: 0}, topology.NodePatch{Name: topology.Ptr("db")})

	c, ok := s.CreateConnection(a.ID, b.ID)
	fmt.Println(c.Name, ok)

	_, ok = s.CreateConnection(b.ID, a.ID)
	fmt.Println("reverse accepted:", ok)

	s.DeleteNode(a.ID)
	fmt.Println("connections left:", s.ConnectionCount())
	// Output:
	// Link 1 true
	// reverse accepted: false
	// connections left: 0
}

func ExampleCoerceResource() {
	fmt.Println(topology.CoerceResource(topology.ResourceCPU, "4"))
	fmt.Println(topology.CoerceResource(topology.ResourceMemory, "lots"))
	fmt.Println(topology.CoerceResource(topology.ResourceDisk, "5"))
	// Output:
	// 4
	// 1
	// 10
}
