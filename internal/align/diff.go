package align

import (
	"fmt"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff computes the character-level edit script turning generated (the
// transcript side) into reference. The diff runs to completion regardless of
// input size, then semantic cleanup merges trivial fragments so stray
// one-character equalities do not shred the projection runs.
func Diff(generated, reference string) ([]EditOp, error) {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // multi-minute alignments must still finish

	diffs := dmp.DiffMain(generated, reference, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	ops := make([]EditOp, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var kind OpKind
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = OpEqual
		case diffmatchpatch.DiffInsert:
			kind = OpInsert
		case diffmatchpatch.DiffDelete:
			kind = OpDelete
		default:
			return nil, fmt.Errorf("diff produced unknown op type %d", d.Type)
		}
		ops = append(ops, EditOp{Kind: kind, Text: d.Text})
	}

	if err := checkReconstruction(ops, generated, reference); err != nil {
		return nil, err
	}
	return ops, nil
}

// checkReconstruction is the correctness gate: concatenating the ops on each
// side must reproduce that side's input exactly.
func checkReconstruction(ops []EditOp, generated, reference string) error {
	var gen, ref []byte
	for _, op := range ops {
		switch op.Kind {
		case OpEqual:
			gen = append(gen, op.Text...)
			ref = append(ref, op.Text...)
		case OpDelete:
			gen = append(gen, op.Text...)
		case OpInsert:
			ref = append(ref, op.Text...)
		}
	}

	if string(gen) != generated {
		return fmt.Errorf("%w: transcript side reconstructed %d chars, expected %d",
			ErrReconstruction, utf8.RuneCount(gen), utf8.RuneCountInString(generated))
	}
	if string(ref) != reference {
		return fmt.Errorf("%w: reference side reconstructed %d chars, expected %d",
			ErrReconstruction, utf8.RuneCount(ref), utf8.RuneCountInString(reference))
	}
	return nil
}
