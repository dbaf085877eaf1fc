package lexical

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits on punctuation",
			input: "React, Frontend/Developer!",
			want:  []string{"react", "frontend", "developer"},
		},
		{
			name:  "drops tokens of length two or less",
			input: "go is a great fit",
			want:  []string{"great", "fit"},
		},
		{
			name:  "keeps digits",
			input: "python3 web3 engineer",
			want:  []string{"python3", "web3", "engineer"},
		},
		{
			name:  "empty after filtering",
			input: "a b c 12 !?",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
