package vector_math

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/chewxy/math32"
)

// Mat is a row-major matrix. Transformations follow the column vector convention (translation lives in
// the last column), use ColumnMajor to hand a matrix to a shader.
type Mat [][]float32

func NewMat(r uint, c uint) (Mat, error) {
	if r == 0 || c == 0 {
		return nil, errors.New("cannot construct 0-sized matrix")
	}
	m := make([][]float32, r)
	for i := range m {
		m[i] = make([]float32, c)
	}
	return m, nil
}

func (m *Mat) Add(b *Mat) (Mat, error) {
	rowsA, colsA := (*m).Size()
	rowsB, colsB := (*b).Size()
	if rowsA != rowsB || colsA != colsB {
		return nil, fmt.Errorf(
			"can't add %dx%d matrix with %dx%d matrix, matrices not of equal size",
			rowsA, colsA, rowsB, colsB,
		)
	}
	C, _ := NewMat(uint(rowsA), uint(colsA))
	for i := 0; i < rowsA; i++ {
		for j := 0; j < colsA; j++ {
			C[i][j] = (*m)[i][j] + (*b)[i][j]
		}
	}
	return C, nil
}

func (m *Mat) Sub(b *Mat) (Mat, error) {
	rowsA, colsA := (*m).Size()
	rowsB, colsB := (*b).Size()
	if rowsA != rowsB || colsA != colsB {
		return nil, fmt.Errorf(
			"can't subtract %dx%d matrix from %dx%d matrix, matrices not of equal size",
			rowsB, colsB, rowsA, colsA,
		)
	}
	C, _ := NewMat(uint(rowsA), uint(colsA))
	for i := 0; i < rowsA; i++ {
		for j := 0; j < colsA; j++ {
			C[i][j] = (*m)[i][j] - (*b)[i][j]
		}
	}
	return C, nil
}

func (m *Mat) Mult(b *Mat) (Mat, error) {
	rowsA, colsA := (*m).Size()
	rowsB, colsB := (*b).Size()
	if colsA != rowsB {
		return nil, fmt.Errorf(
			"can't multiply %dx%d matrix with %dx%d matrix, size of columns and rows do not match",
			rowsA, colsA, rowsB, colsB,
		)
	}
	C, _ := NewMat(uint(rowsA), uint(colsB))
	for i := 0; i < rowsA; i++ {
		for j := 0; j < colsB; j++ {
			for k := 0; k < colsA; k++ {
				C[i][j] += (*m)[i][k] * (*b)[k][j]
			}
		}
	}
	return C, nil
}

// MustMult multiplies two square matrices of equal size, mismatched sizes panic.
func (m *Mat) MustMult(b *Mat) Mat {
	res, err := m.Mult(b)
	if err != nil {
		panic(err)
	}
	return res
}

func (m *Mat) Transpose() Mat {
	mT, _ := NewMat(uint(m.ColCnt()), uint(m.RowCnt()))
	for i := range *m {
		for j := range (*m)[i] {
			mT[j][i] = (*m)[i][j]
		}
	}
	return mT
}

func (m *Mat) Equals(b *Mat) bool {
	return m.EqualsApprox(b, 0)
}

// EqualsApprox compares element-wise with an absolute tolerance.
func (m *Mat) EqualsApprox(b *Mat, eps float32) bool {
	rowsA, colsA := (*m).Size()
	rowsB, colsB := (*b).Size()
	if rowsA != rowsB || colsA != colsB {
		return false
	}
	for i := 0; i < rowsA; i++ {
		for j := 0; j < colsA; j++ {
			if math32.Abs((*m)[i][j]-(*b)[i][j]) > eps {
				return false
			}
		}
	}
	return true
}

// Description functions

func (m *Mat) RowCnt() int {
	return len(*m)
}

func (m *Mat) ColCnt() int {
	return len((*m)[0])
}

func (m *Mat) Size() (int, int) {
	return (*m).RowCnt(), (*m).ColCnt()
}

func (m *Mat) ByteSize() int {
	return int(unsafe.Sizeof((*m)[0][0])) * (*m).RowCnt() * (*m).ColCnt()
}

// Unroll flattens the matrix row by row.
func (m *Mat) Unroll() []float32 {
	cols := m.ColCnt()
	f := make([]float32, m.RowCnt()*cols)
	for i := range f {
		f[i] = (*m)[i/cols][i%cols]
	}
	return f
}

// ColumnMajor flattens the matrix column by column, the memory order GLSL expects for a mat4.
func (m *Mat) ColumnMajor() []float32 {
	rows := m.RowCnt()
	f := make([]float32, rows*m.ColCnt())
	for i := range f {
		f[i] = (*m)[i%rows][i/rows]
	}
	return f
}

func (m *Mat) ToString() string {
	mStr := strings.Builder{}
	for i := range *m {
		if i > 0 {
			mStr.WriteString("\n")
		}
		mStr.WriteString(fmt.Sprintf("%v", (*m)[i]))
	}
	return mStr.String()
}

func (m *Mat) Describe() string {
	return fmt.Sprintf(
		"%dx%d Matrix, %d Bytes in memory:\n%s",
		m.RowCnt(), m.ColCnt(), m.ByteSize(), m.ToString(),
	)
}
