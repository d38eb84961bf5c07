////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Text encodings of matrices and permutations for storage

package storage

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/elixxir/mobs/bitset"
	"gitlab.com/elixxir/mobs/matrix"
	"gitlab.com/elixxir/mobs/permutation"
)

const (
	cellSeparator  = ";"
	imageSeparator = ","
)

// EncodeMatrix joins the bit strings of every entry in row-major order.
func EncodeMatrix(m matrix.Matrix) string {
	cells := make([]string, 0, matrix.Size*matrix.Size)
	for i := 0; i < matrix.Size; i++ {
		for j := 0; j < matrix.Size; j++ {
			cells = append(cells, m.Cell(i, j).String())
		}
	}
	return strings.Join(cells, cellSeparator)
}

// DecodeMatrix parses the output of EncodeMatrix.
func DecodeMatrix(s string) (matrix.Matrix, error) {
	parts := strings.Split(s, cellSeparator)
	if len(parts) != matrix.Size*matrix.Size {
		return matrix.Matrix{}, errors.Errorf("encoded matrix has %d "+
			"entries, expected %d", len(parts), matrix.Size*matrix.Size)
	}

	var cells [matrix.Size][matrix.Size]bitset.BitSet
	for k, part := range parts {
		b, err := bitset.Parse(part)
		if err != nil {
			return matrix.Matrix{}, errors.WithMessagef(err,
				"failed to parse entry (%d,%d)", k/matrix.Size+1,
				k%matrix.Size+1)
		}
		cells[k/matrix.Size][k%matrix.Size] = b
	}
	return matrix.FromCells(cells)
}

// EncodePermutation joins the image array of p.
func EncodePermutation(p permutation.Permutation) string {
	images := make([]string, p.Len())
	for i := range images {
		images[i] = strconv.Itoa(p.At(i))
	}
	return strings.Join(images, imageSeparator)
}

// DecodePermutation parses the output of EncodePermutation.
func DecodePermutation(s string) (permutation.Permutation, error) {
	if s == "" {
		return permutation.Permutation{}, errors.New("encoded permutation " +
			"is empty")
	}
	parts := strings.Split(s, imageSeparator)
	mapping := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return permutation.Permutation{}, errors.Wrapf(err,
				"invalid image at position %d", i)
		}
		mapping[i] = v
	}
	return permutation.New(mapping)
}
