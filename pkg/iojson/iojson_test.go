package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, item{Name: "Ann", Age: 20}))
	require.NoError(t, WriteLine(&buf, item{Name: "Bob", Age: 22}))

	assert.Equal(t, "{\"name\":\"Ann\",\"age\":20}\n{\"name\":\"Bob\",\"age\":22}\n", buf.String())
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, item{Name: "Ann"}))
	assert.Contains(t, out.String(), "\n  \"name\": \"Ann\"")
	assert.Empty(t, errOut.String())

	out.Reset()
	require.NoError(t, WriteWith(&out, &errOut, make(chan int)))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}

func TestFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Ann","age":20}`), 0o644))

	fr := FileReader[item]{fileFlagValue: path}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, item{Name: "Ann", Age: 20}, got)

	fr = FileReader[item]{fileFlagValue: filepath.Join(t.TempDir(), "missing.json")}
	_, err = fr.Read()
	assert.Error(t, err)
}
