package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplate(t *testing.T) {
	source := filepath.Join("work", "contest", "sol.cpp")

	cases := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "typical compile command",
			template: "g++ $(FILE) -o $(BIN_DIR)/$(FILENAME).$(EXE_EXT)",
			want:     "g++ " + source + " -o bin/sol.cpp." + ExeExt(),
		},
		{
			name:     "directory macros",
			template: "$(DIR)|$(DIRNAME)",
			want:     filepath.Join("work", "contest") + "|contest",
		},
		{
			name:     "repeated macro",
			template: "$(FILENAME) $(FILENAME)",
			want:     "sol.cpp sol.cpp",
		},
		{
			name:     "unknown macros pass through",
			template: "$(NOPE) $(FILENAME)",
			want:     "$(NOPE) sol.cpp",
		},
		{
			name:     "no macros",
			template: "make all",
			want:     "make all",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpandTemplate(tc.template, source, "bin")
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBinaryPath(t *testing.T) {
	got := BinaryPath("bin", filepath.Join("dir", "sol.cpp"))
	assert.Equal(t, filepath.Join("bin", "sol.cpp."+ExeExt()), got)
}

func TestExtension(t *testing.T) {
	ext, err := Extension("dir/sol.cpp")
	require.NoError(t, err)
	assert.Equal(t, "cpp", ext)

	_, err = Extension("dir/Makefile")
	assert.ErrorContains(t, err, "no file extension")
}
