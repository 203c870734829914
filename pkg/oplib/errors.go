package oplib

import (
	"github.com/pkg/errors"

	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func allocatorNoRNode(v model.VNodeID) error {
	return errors.Errorf("oplib: vNode %d has no rNode", v)
}

func allocatorNoPath(pairID model.PairID, src, dst topology.NodeID) error {
	return errors.Errorf("oplib: no shortest path for pair %d from %d to %d", pairID, src, dst)
}
