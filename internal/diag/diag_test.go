package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedErr struct{ code string }

func (e *codedErr) Error() string { return "coded failure" }
func (e *codedErr) Code() string  { return e.code }

func TestDiagnosticError(t *testing.T) {
	d := New(CodeUnknownColumn, "case.else", "unknown column %q", "x")
	assert.Equal(t, `[E202] case.else: unknown column "x"`, d.Error())

	d.Line = 7
	assert.Equal(t, `[E202] line 7: case.else: unknown column "x"`, d.Error())

	assert.Equal(t, "[E001] boom", Diagnostic{Code: CodeGeneric, Message: "boom"}.Error())
}

func TestFromErrorKeepsCode(t *testing.T) {
	err := fmt.Errorf("check: %w", &codedErr{code: CodeIncomparable})

	d := FromError("where", err)

	assert.Equal(t, CodeIncomparable, d.Code)
	assert.Equal(t, "where", d.Path)
	assert.Equal(t, "check: coded failure", d.Message)
}

func TestFromErrorDefaultsToGeneric(t *testing.T) {
	d := FromError("", errors.New("plain"))
	assert.Equal(t, CodeGeneric, d.Code)
}

func TestCodesAreDistinct(t *testing.T) {
	codes := []string{
		CodeGeneric, CodeParse, CodeRuntime,
		CodeUnknownTable, CodeUnknownColumn, CodeAmbiguousColumn,
		CodeOperandNotBoolean, CodeIncomparable, CodeConditionNotBoolean,
	}
	seen := map[string]bool{}
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
}

func TestWithLine(t *testing.T) {
	in := []Diagnostic{{Code: CodeGeneric}, {Code: CodeParse, Line: 3}}
	out := WithLine(in, 9)

	assert.Equal(t, 9, out[0].Line)
	assert.Equal(t, 3, out[1].Line)
	assert.Equal(t, 0, in[0].Line, "input is not modified")
}
