package behavior

// frame is the activation record of one node on the runner cursor.
type frame[C any] struct {
	node Node[C]
	// pos is the next child position for Sequence, Selector and Random.
	pos int
	// order maps positions to child indices: the held permutation of an
	// unweighted Random, or the single drawn child of a weighted one.
	order []int
	// iteration counts completed child activations of a Repeat.
	iteration int
}
