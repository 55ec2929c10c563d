package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspileValidSource(t *testing.T) {
	src := "class Demo extends Form { configure() {} }"
	out, err := Transpile(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestTranspileSyntaxError(t *testing.T) {
	_, err := Transpile("class {")
	require.Error(t, err)

	var terr *TranspileError
	assert.ErrorAs(t, err, &terr)
	assert.NotEmpty(t, terr.Detail)
}

func TestTranspileAfterSanitize(t *testing.T) {
	raw := `
import { Form, TextField } from "@formlab/core";

interface CustomerShape {
  name: string;
}

export class Demo extends Form {
  configure() {
    this.add(new TextField({ label: "Name" }));
  }
}
`
	_, err := Transpile(Sanitize(raw))
	assert.NoError(t, err)
}
