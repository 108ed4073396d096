package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

func TestGlob_Match(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"", "anything.bin", true},
		{"*.txt", "notes.txt", true},
		{"*.txt", "NOTES.TXT", true},
		{"*.txt", "notes.txt.bak", false},
		{"*.txt", "notesxtxt", false},
		{"*.txt", ".txt", true},
		{"file?.log", "file1.log", true},
		{"file?.log", "file12.log", false},
		{"file?.log", "fileй.log", true},
		{"*", "a", true},
		{"a+b(c).md", "a+b(c).md", true},
		{"a+b(c).md", "aab(c).md", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.name, func(t *testing.T) {
			g, err := CompileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Match(tt.name))
		})
	}
}

func TestCompileGlob_RejectsPaths(t *testing.T) {
	_, err := CompileGlob("sub/*.txt")

	assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
}
