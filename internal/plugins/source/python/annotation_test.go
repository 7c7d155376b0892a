package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringValue(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{`"List[str]"`, "List[str]", true},
		{`'Dict[str, \"x\"]'`, `Dict[str, "x"]`, true},
		{`"a\\b"`, `a\b`, true},
		{`r"a\nb"`, `a\nb`, true},
		{`R'\d+'`, `\d+`, true},
		{`"\d+"`, `\d+`, true},
		{`"\101\x42C\U00000044"`, "ABCD", true},
		{`"\N{BULLET}"`, `\N{BULLET}`, true},
		{"\"\"\"multi\\\nline\"\"\"", "multiline", true},
		{`b"raw\n"`, `b"raw\n"`, true},
		{`f"{x}"`, "", false},
		{`noquotes`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := stringValue(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
