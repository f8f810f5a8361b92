// pkg/engine/deps_test.go

package engine

import (
	"context"
	"testing"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/stretchr/testify/assert"
)

func TestParseLddOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name: "mixed resolved and missing",
			output: "\tlinux-vdso.so.1 (0x00007ffd)\n" +
				"\tlibzvbi.so.0 => not found\n" +
				"\tlibc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f)\n" +
				"\tlibsnappy.so.1 => not found\n",
			want: []string{"libsnappy.so.1", "libzvbi.so.0"},
		},
		{
			name:   "everything resolves",
			output: "\tlibc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f)\n",
			want:   nil,
		},
		{
			name:   "empty output",
			output: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLddOutput(tt.output))
		})
	}
}

func TestMissingLibrariesAtWithoutBinary(t *testing.T) {
	rc := easy_io.NewContext(context.Background(), "test")

	// No binary in the root means nothing to check, not an error.
	assert.Nil(t, MissingLibrariesAt(rc, t.TempDir(), []string{"tes3mp.x86_64"}))
}

func TestInstallHintEmptyForNoMissing(t *testing.T) {
	assert.Empty(t, InstallHint(nil))
	assert.Empty(t, InstallHint([]string{}))
}

func TestInstalledVersionUnknownWhenAbsent(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	assert.Empty(t, InstalledVersion())
}
