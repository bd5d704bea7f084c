package domain

// Assignment maps every node (by position) to a block or cluster id
type Assignment []ID

// Blocks returns max+1, the number of blocks an assignment refers to
func (a Assignment) Blocks() uint64 {
	if len(a) == 0 {
		return 0
	}
	var top ID
	for _, b := range a {
		top = max(top, b)
	}
	return top + 1
}

// Covers reports whether every node of an n-node graph has an entry
func (a Assignment) Covers(n uint64) bool {
	return uint64(len(a)) >= n
}
