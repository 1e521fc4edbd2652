package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"score":1}`, `{"score":1}`},
		{"json fence", "```json\n{\"score\":1}\n```", `{"score":1}`},
		{"bare fence", "```\n{\"score\":1}\n```\n", `{"score":1}`},
		{"surrounding whitespace", "  \n{\"score\":1}\t", `{"score":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFences(tc.in))
		})
	}
}
