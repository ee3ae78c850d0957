package outline

// Sequence is one detected run of mutually similar siblings. Start and End
// are inclusive indices into the sibling slice the detector was given;
// Members holds the nodes themselves in document order.
type Sequence struct {
	Start   int
	End     int
	Members []*Node
}

// Len returns the number of members in the run.
func (s Sequence) Len() int { return s.End - s.Start + 1 }

// FindSimilarSequence finds the longest contiguous run of at least three
// siblings whose fingerprints are all within threshold bits of the run's
// anchor (its first element). The anchor slides left to right; a longer run
// replaces the recorded one only under a strict greater-than comparison, so
// the first-found run wins ties. Returns false when no qualifying run
// exists, including for sibling lists shorter than three.
//
// The anchor scan and comparison operator are part of the contract: callers
// depending on exact group boundaries rely on this order.
func (f *Fingerprinter) FindSimilarSequence(siblings []*Node, threshold int) (Sequence, bool) {
	var best Sequence
	found := false

	for anchor := 0; anchor+minRunLength <= len(siblings); anchor++ {
		anchorFP := f.Fingerprint(siblings[anchor])
		end := anchor
		for j := anchor + 1; j < len(siblings); j++ {
			if !Similar(anchorFP, f.Fingerprint(siblings[j]), threshold) {
				break
			}
			end = j
		}
		length := end - anchor + 1
		if length >= minRunLength && (!found || length > best.Len()) {
			best = Sequence{Start: anchor, End: end, Members: siblings[anchor : end+1]}
			found = true
		}
	}

	return best, found
}

// FindAllSimilarSequences repeatedly applies FindSimilarSequence to the
// siblings not yet claimed by an earlier run, so no element ever belongs to
// two runs. Claimed indices are removed from consideration each iteration;
// the search therefore terminates after at most len(siblings)/3 rounds, and
// stops early once fewer than three unclaimed siblings remain or a round
// finds nothing.
//
// Runs found after the first round may span siblings that were not adjacent
// in the original list (the claimed ones between them are skipped). Start
// and End in the returned sequences index the original slice.
func (f *Fingerprinter) FindAllSimilarSequences(siblings []*Node, threshold int) []Sequence {
	if len(siblings) < minRunLength {
		return nil
	}

	claimed := make([]bool, len(siblings))
	var runs []Sequence

	for {
		work := make([]*Node, 0, len(siblings))
		index := make([]int, 0, len(siblings))
		for i, n := range siblings {
			if !claimed[i] {
				work = append(work, n)
				index = append(index, i)
			}
		}
		if len(work) < minRunLength {
			break
		}

		seq, ok := f.FindSimilarSequence(work, threshold)
		if !ok {
			break
		}

		members := make([]*Node, 0, seq.Len())
		for i := seq.Start; i <= seq.End; i++ {
			claimed[index[i]] = true
			members = append(members, work[i])
		}
		runs = append(runs, Sequence{
			Start:   index[seq.Start],
			End:     index[seq.End],
			Members: members,
		})
	}

	return runs
}
