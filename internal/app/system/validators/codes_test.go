package validators

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestHasCode(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		codes []int32
		want  bool
	}{
		{"nil", nil, []int32{codeNamespaceExists}, false},
		{"matching code", mongo.CommandError{Code: 48, Message: "x"}, []int32{codeNamespaceExists}, true},
		{"other code", mongo.CommandError{Code: 11000, Message: "dup"}, []int32{codeNamespaceExists}, false},
		{"any of several", mongo.CommandError{Code: 115}, []int32{codeCommandNotFound, codeNotImplemented}, true},
		{"message only", errors.New("collection already exists"), []int32{codeNamespaceExists}, true},
		{"message for other code", errors.New("no such command: collMod"), []int32{codeNamespaceExists}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasCode(tt.err, tt.codes...); got != tt.want {
				t.Errorf("hasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}
