package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (base string, root *Root) {
	t.Helper()

	base = t.TempDir()
	www := filepath.Join(base, "www")
	require.NoError(t, os.MkdirAll(filepath.Join(www, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(www, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(www, "assets", "style.css"), []byte("h1{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("secret"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "www2"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "www2", "leak.txt"), []byte("leak"), 0o644))

	root, err := NewRoot(www, 0)
	require.NoError(t, err)
	return base, root
}

func TestNewRoot(t *testing.T) {
	base, root := newFixture(t)

	want, err := filepath.EvalSymlinks(filepath.Join(base, "www"))
	require.NoError(t, err)
	assert.Equal(t, want, root.Dir())

	_, err = NewRoot(filepath.Join(base, "missing"), 0)
	require.Error(t, err)

	_, err = NewRoot(filepath.Join(base, "secret.txt"), 0)
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	_, root := newFixture(t)

	cases := []struct {
		target string
		want   string
	}{
		{"/", root.Dir()},
		{"/index.html", filepath.Join(root.Dir(), "index.html")},
		{"/assets", filepath.Join(root.Dir(), "assets")},
		{"/assets/../index.html", filepath.Join(root.Dir(), "index.html")},
		{"//assets//style.css", filepath.Join(root.Dir(), "assets", "style.css")},
		{"index.html", filepath.Join(root.Dir(), "index.html")},
	}
	for _, c := range cases {
		got, err := root.Resolve(c.target)
		require.NoError(t, err, c.target)
		assert.Equal(t, c.want, got, c.target)
	}

	for _, target := range []string{"/../secret.txt", "/assets/../../secret.txt", "/../www2/leak.txt", "/.."} {
		_, err := root.Resolve(target)
		assert.ErrorIs(t, err, ErrOutsideRoot, target)
	}

	_, err := root.Resolve("/missing.html")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestResolveSymlinkEscape(t *testing.T) {
	base, root := newFixture(t)

	if err := os.Symlink(filepath.Join(base, "secret.txt"), filepath.Join(root.Dir(), "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root.Dir(), "assets"), filepath.Join(root.Dir(), "alias")))

	_, err := root.Resolve("/link.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	got, err := root.Resolve("/alias/style.css")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root.Dir(), "assets", "style.css"), got)

	// .. is applied after the link is followed
	_, err = root.Resolve("/alias/../../secret.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestReadText(t *testing.T) {
	_, root := newFixture(t)

	data, err := root.ReadText(filepath.Join(root.Dir(), "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>home</h1>", string(data))

	utf := filepath.Join(root.Dir(), "utf.txt")
	require.NoError(t, os.WriteFile(utf, []byte("héllo"), 0o644))
	data, err = root.ReadText(utf)
	require.NoError(t, err)
	assert.Equal(t, "héllo", string(data))

	bin := filepath.Join(root.Dir(), "image.png")
	require.NoError(t, os.WriteFile(bin, []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe}, 0o644))
	_, err = root.ReadText(bin)
	assert.ErrorIs(t, err, ErrNotText)

	_, err = root.ReadText(filepath.Join(root.Dir(), "assets"))
	require.Error(t, err)

	_, err = root.ReadText(filepath.Join(root.Dir(), "missing"))
	require.Error(t, err)
}

func TestReadTextLimit(t *testing.T) {
	_, fixture := newFixture(t)

	root, err := NewRoot(fixture.Dir(), 4)
	require.NoError(t, err)

	data, err := root.ReadText(filepath.Join(root.Dir(), "assets", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "h1{}", string(data))

	_, err = root.ReadText(filepath.Join(root.Dir(), "index.html"))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"/index.html":        "text/html",
		"/style.css":         "text/css",
		"/app.js":            "application/javascript",
		"/logo.png":          "image/png",
		"/data.xyz":          "text/plain",
		"/README":            "text/plain",
		"/INDEX.HTML":        "text/plain",
		"/dir.d/file":        "text/plain",
		"/trailing.":         "text/plain",
		"/assets/index.html": "text/html",
	}
	for p, want := range cases {
		assert.Equal(t, want, ContentType(p), p)
	}
}
