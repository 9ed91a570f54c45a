package diag

import (
	"bytes"
	"mosa/internal/modules"
	"mosa/internal/object"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestReportLocatesEvaluationErrors(t *testing.T) {
	storage := modules.NewStorage()
	loader := modules.NewLoader(t.TempDir(), storage)
	_, err := loader.LoadSource("main", "let a = 1\nlet b: str = a\n")
	require.NoError(t, err)

	evalErr := object.NewError(object.TypeMismatch, "bad").At("main", 10)

	var out bytes.Buffer
	Report(&out, evalErr, storage)

	assert.Equal(t,
		"[ERROR] type mismatch: bad @ main:2:1\n"+
			"       1 | let a = 1\n"+
			"  >    2 | let b: str = a\n"+
			"           ^ type mismatch\n",
		out.String())
}

func TestReportWrappedError(t *testing.T) {
	evalErr := object.NewError(object.UnknownModule, "gone").At("other", 3)

	var out bytes.Buffer
	Report(&out, errors.Wrap(evalErr, "while running"), modules.NewStorage())

	assert.Equal(t, "[ERROR] unknown module: gone @ other\n", out.String())
}

func TestReportPlainError(t *testing.T) {
	var out bytes.Buffer
	Report(&out, errors.New("boom"), nil)
	assert.Equal(t, "[ERROR] boom\n", out.String())
}
