package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shortRe = regexp.MustCompile(`Shortened URL: (http://short\.ly/[0-9a-f]{8})`)

func clearEnv(t *testing.T) {
	for _, k := range []string{"BASE_URL", "LOG_LEVEL", "STORAGE_KIND", "FILE_STORAGE_PATH", "DATABASE_DSN"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func Test_run(t *testing.T) {
	for _, kind := range []string{"file", "bolt"} {
		t.Run(kind, func(t *testing.T) {
			clearEnv(t)
			args := []string{
				"-storage", kind,
				"-file_storage_path", filepath.Join(t.TempDir(), "store"),
				"-log_level", "error",
			}

			var out bytes.Buffer
			err := run(args, strings.NewReader("1\nhttps://example.com/page\n3\n"), &out)
			require.NoError(t, err)

			m := shortRe.FindStringSubmatch(out.String())
			require.Len(t, m, 2, out.String())

			// second process reads what the first one stored
			out.Reset()
			err = run(args, strings.NewReader("2\n"+m[1]+"\n1\nhttps://example.com/page\n3\n"), &out)
			require.NoError(t, err)
			assert.Contains(t, out.String(), "Original URL: https://example.com/page")
			assert.Contains(t, out.String(), "Shortened URL: "+m[1])
		})
	}
}

func Test_runInvalidConfig(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	err := run([]string{"-storage", "tape"}, strings.NewReader(""), &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
