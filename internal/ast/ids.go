package ast

// NodeID — индекс узла в арене дерева (1-based). Идентичность узла для всех side-table.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }
