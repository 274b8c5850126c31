package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type named struct{}

func (named) String() string { return "NAMED_OBJECT" }

type plain struct{}

func TestObjToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  any
		want string
	}{
		{name: "nil", obj: nil, want: "NIL"},
		{name: "stringer", obj: named{}, want: "NAMED_OBJECT"},
		{name: "string", obj: "decoder", want: "decoder"},
		{name: "struct", obj: plain{}, want: "plain"},
		{name: "pointer", obj: &plain{}, want: "plain"},
		{name: "truncated", obj: "a_very_long_object_name_indeed", want: "a_very_long_object_n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, objToString(tt.obj))
		})
	}
}
