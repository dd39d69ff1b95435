package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/netviva/fleetrec/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with table and field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Table:   "OS",
			Field:   "data_fechamento_OS",
			Message: "column missing",
		}
		assert.Equal(t, "validation failed for table OS, field data_fechamento_OS: column missing", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("table only", func(t *testing.T) {
		err := pkgerrors.NewValidationError("CONTRATOS", "", "sheet is empty")
		assert.Equal(t, "validation failed for table CONTRATOS: sheet is empty", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("bare", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "no sources"}
		assert.Equal(t, "validation failed: no sources", err.Error())
	})
}

func TestSourceError(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		err := pkgerrors.NewSourceError("NOTAS", "sheet not found in workbook", nil)
		assert.Equal(t, "source NOTAS: sheet not found in workbook", err.Error())
		assert.True(t, pkgerrors.IsSourceMissing(err))
	})

	t.Run("wrapped", func(t *testing.T) {
		base := errors.New("boom")
		err := pkgerrors.WrapSource("OS", base)
		assert.True(t, errors.Is(err, base))
		assert.True(t, errors.Is(err, pkgerrors.ErrSourceMissing))
	})

	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapSource("OS", nil))
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("disk full")
	err := pkgerrors.WrapIO("write", "/tmp/snapshot.yaml", base)
	assert.Equal(t, "IO error during write of /tmp/snapshot.yaml: disk full", err.Error())
	assert.True(t, errors.Is(err, base))
}

func TestParseError(t *testing.T) {
	base := errors.New("bad cell")
	err := pkgerrors.WrapParse("xlsx", "NFxPRODUTO.xlsx", base)
	assert.Equal(t, "parse error in xlsx file NFxPRODUTO.xlsx: bad cell", err.Error())
	assert.True(t, errors.Is(err, base))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("snapshot store", "no directory configured", nil)
	assert.Equal(t, "configuration error in snapshot store: no directory configured", err.Error())
}
