package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsModuleSyntax(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		gone     []string
		survives []string
	}{
		{
			name:     "named import",
			input:    "import { Form, TextField } from \"@formlab/core\";\nclass Demo extends Form {}\n",
			gone:     []string{"import", "@formlab/core"},
			survives: []string{"class Demo extends Form {}"},
		},
		{
			name: "multi-line import list",
			input: "import {\n  Form,\n  TextField,\n  Select,\n} from \"@formlab/core\";\nclass Demo extends Form {}\n",
			gone:     []string{"import", "@formlab/core", "Select,"},
			survives: []string{"class Demo extends Form {}"},
		},
		{
			name:     "default import",
			input:    "import Formlab from \"@formlab/core\";\nlet x = 1;\n",
			gone:     []string{"import"},
			survives: []string{"let x = 1;"},
		},
		{
			name:     "namespace import",
			input:    "import * as ui from \"@formlab/core\";\nlet x = 1;\n",
			gone:     []string{"import", "* as ui"},
			survives: []string{"let x = 1;"},
		},
		{
			name:     "bare import",
			input:    "import \"./styles.css\";\nlet x = 1;\n",
			gone:     []string{"import", "styles.css"},
			survives: []string{"let x = 1;"},
		},
		{
			name:     "export keyword removed, declaration kept",
			input:    "export class Demo extends Form {}\n",
			gone:     []string{"export"},
			survives: []string{"class Demo extends Form {}"},
		},
		{
			name:     "interface block",
			input:    "interface Customer {\n  name: string;\n  address: { city: string };\n}\nclass Demo extends Form {}\n",
			gone:     []string{"interface", "city"},
			survives: []string{"class Demo extends Form {}"},
		},
		{
			name:     "type alias",
			input:    "type Mode = \"create\" | \"edit\";\nlet mode = \"create\";\n",
			gone:     []string{"type Mode"},
			survives: []string{"let mode = \"create\";"},
		},
		{
			name:     "type group remnant",
			input:    "type { Customer, Order };\nlet x = 1;\n",
			gone:     []string{"type {"},
			survives: []string{"let x = 1;"},
		},
		{
			name:     "as assertion",
			input:    "const field = this.find(\"name\") as TextField;\n",
			gone:     []string{" as TextField"},
			survives: []string{"const field = this.find(\"name\");"},
		},
		{
			name:     "generic as assertion",
			input:    "const rows = data as Table<Customer>;\n",
			gone:     []string{" as Table<Customer>"},
			survives: []string{"const rows = data;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sanitize(tt.input)
			for _, g := range tt.gone {
				assert.NotContains(t, out, g)
			}
			for _, s := range tt.survives {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"class Demo extends Form {}",
		"import { Form } from \"x\";\nexport class Demo extends Form {}\ninterface I { a: string; }\ntype T = number;\ntype { A };\nlet v = x as T;\n",
		strings.Repeat("import \"m\";\n", 10) + "let a = 1;",
	}

	for _, input := range inputs {
		once := Sanitize(input)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestSanitizeIsTotal(t *testing.T) {
	// Broken syntax must not panic; the transpiler deals with validity.
	broken := []string{
		"import { unterminated",
		"interface {",
		"class",
		"as as as",
	}
	for _, input := range broken {
		assert.NotPanics(t, func() { Sanitize(input) })
	}
}
