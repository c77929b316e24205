package rtree

// AddWriteNodeCommand registers cmd to run after every node write.
func (t *Tree) AddWriteNodeCommand(cmd NodeCommand) {
	t.writeNodeCommands = append(t.writeNodeCommands, cmd)
}

// AddReadNodeCommand registers cmd to run after every node read.
func (t *Tree) AddReadNodeCommand(cmd NodeCommand) {
	t.readNodeCommands = append(t.readNodeCommands, cmd)
}

// AddDeleteNodeCommand registers cmd to run after every node delete.
func (t *Tree) AddDeleteNodeCommand(cmd NodeCommand) {
	t.deleteNodeCommands = append(t.deleteNodeCommands, cmd)
}
