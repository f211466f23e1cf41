package bump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceVersionLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple",
			in:   "version = \"0.1.0\"\n",
			want: "version = \"9.9.9\"\n",
		},
		{
			name: "keeps spacing around equals",
			in:   "name = \"x\"\nversion=\"0.1.0\" # bumped by release\n",
			want: "name = \"x\"\nversion=\"9.9.9\" # bumped by release\n",
		},
		{
			name: "only first declaration",
			in:   "version = \"0.1.0\"\n[dependencies.a]\nversion = \"0.1.0\"\n",
			want: "version = \"9.9.9\"\n[dependencies.a]\nversion = \"0.1.0\"\n",
		},
		{
			name: "ignores inline tables and indented keys",
			in:   "a = { version = \"1\" }\n  version = \"2\"\nversion = \"3\"\n",
			want: "a = { version = \"1\" }\n  version = \"2\"\nversion = \"9.9.9\"\n",
		},
		{
			name: "crlf line endings",
			in:   "[package]\r\nversion = \"0.1.0\"\r\n",
			want: "[package]\r\nversion = \"9.9.9\"\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := replaceVersionLine([]byte(tt.in), "9.9.9")
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestReplaceVersionLine_NotFound(t *testing.T) {
	_, err := replaceVersionLine([]byte("name = \"x\"\n"), "1.0.0")
	assert.ErrorIs(t, err, ErrVersionLineNotFound)
}

func TestReadVersionLine(t *testing.T) {
	v, err := readVersionLine([]byte("[project]\nversion = \"1.4.0\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v)
}

func TestVerifyTOML(t *testing.T) {
	require.NoError(t, verifyTOML([]byte("[project]\nversion = \"1.0.0\"\n"), "1.0.0"))
	require.NoError(t, verifyTOML([]byte("[tool.poetry]\nversion = \"1.0.0\"\n"), "1.0.0"))
	require.NoError(t, verifyTOML([]byte("version = \"1.0.0\"\n"), "1.0.0"), "top-level version has no table to check")

	assert.ErrorContains(t, verifyTOML([]byte("[package]\nversion = \"0.9.0\"\n"), "1.0.0"), "package.version")
	assert.ErrorContains(t, verifyTOML([]byte("[package\nversion = 1"), "1.0.0"), "parsing rewritten TOML")
}
