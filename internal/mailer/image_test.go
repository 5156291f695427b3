package mailer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct{ base string }

func (f fakeResolver) Resolve(ref string) string {
	return filepath.Join(f.base, ref)
}

func writeTempImage(t *testing.T, name string) (fakeResolver, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("fake-image-bytes"), 0o644))
	return fakeResolver{base: dir}, name
}

func TestCIDEmbedder(t *testing.T) {
	resolver, ref := writeTempImage(t, "header.png")
	e := &CIDEmbedder{Resolver: resolver, Log: zap.NewNop()}

	img, err := e.Embed(ref, "header")
	require.NoError(t, err)
	require.NotNil(t, img)
	require.NotNil(t, img.Attachment)

	assert.True(t, strings.HasPrefix(img.Ref, "cid:header_"), img.Ref)
	assert.Equal(t, "cid:"+img.Attachment.CID, img.Ref)
	assert.Equal(t, "image/png", img.Attachment.ContentType)
	assert.Equal(t, "header.png", img.Attachment.Filename)
}

// Content-IDs must never repeat, even for the same file, or attachments
// collide inside a message.
func TestCIDEmbedderUniqueIDs(t *testing.T) {
	resolver, ref := writeTempImage(t, "footer.jpg")
	e := &CIDEmbedder{Resolver: resolver, Log: zap.NewNop()}

	first, err := e.Embed(ref, "footer")
	require.NoError(t, err)
	second, err := e.Embed(ref, "footer")
	require.NoError(t, err)

	assert.NotEqual(t, first.Attachment.CID, second.Attachment.CID)
}

func TestCIDEmbedderMissingFile(t *testing.T) {
	e := &CIDEmbedder{Resolver: fakeResolver{base: t.TempDir()}, Log: zap.NewNop()}

	img, err := e.Embed("nao-existe.png", "header")
	assert.NoError(t, err)
	assert.Nil(t, img)
}

func TestInlineEmbedder(t *testing.T) {
	resolver, ref := writeTempImage(t, "header.gif")
	e := &InlineEmbedder{Resolver: resolver, Log: zap.NewNop()}

	img, err := e.Embed(ref, "header")
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.True(t, strings.HasPrefix(img.Ref, "data:image/gif;base64,"), img.Ref)
	assert.Nil(t, img.Attachment)
}

func TestInlineEmbedderMissingFile(t *testing.T) {
	e := &InlineEmbedder{Resolver: fakeResolver{base: t.TempDir()}, Log: zap.NewNop()}

	img, err := e.Embed("nao-existe.png", "header")
	assert.NoError(t, err)
	assert.Nil(t, img)
}

func TestContentTypeTable(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentTypeFor("a.jpg"))
	assert.Equal(t, "image/jpeg", contentTypeFor("a.JPEG"))
	assert.Equal(t, "image/png", contentTypeFor("a.png"))
	assert.Equal(t, "image/webp", contentTypeFor("a.webp"))
	// unknown extensions default to jpeg
	assert.Equal(t, "image/jpeg", contentTypeFor("a.bmp"))
}
