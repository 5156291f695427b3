package mailer

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notifica/internal/models"
)

// EmbeddedImage is the outcome of preparing one image for an outgoing email:
// the src reference the HTML should use, plus the attachment descriptor when
// the strategy attaches the file (nil for inline encoding).
type EmbeddedImage struct {
	Ref        string
	Attachment *models.EmailAttachment
}

// ImageEmbedder turns a stored image reference into something an email body
// can display. Two strategies exist: CID attachments and inline base64.
// A missing source file yields (nil, nil): the caller simply omits the
// image instead of failing the send.
type ImageEmbedder interface {
	Embed(ref, role string) (*EmbeddedImage, error)
}

// PathResolver maps a stored image reference to a readable path.
type PathResolver interface {
	Resolve(ref string) string
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func contentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "image/jpeg"
}

// CIDEmbedder attaches the image and points the HTML at a cid: URI. Each
// call mints a fresh Content-ID so attachments never collide across (or
// within) messages.
type CIDEmbedder struct {
	Resolver PathResolver
	Log      *zap.Logger
}

func (e *CIDEmbedder) Embed(ref, role string) (*EmbeddedImage, error) {
	path := e.Resolver.Resolve(ref)
	if _, err := os.Stat(path); err != nil {
		e.Log.Warn("embedded image missing, omitting",
			zap.String("role", role),
			zap.String("ref", ref),
			zap.Error(err),
		)
		return nil, nil
	}

	cid := fmt.Sprintf("%s_%d_%s", role, time.Now().UnixMilli(), shortToken())
	return &EmbeddedImage{
		Ref: "cid:" + cid,
		Attachment: &models.EmailAttachment{
			Filename:    filepath.Base(path),
			Path:        path,
			ContentType: contentTypeFor(path),
			CID:         cid,
		},
	}, nil
}

// InlineEmbedder encodes the image directly into the HTML as a data: URI.
// Used by the bulk import path, where the message count makes attachment
// bookkeeping not worth it.
type InlineEmbedder struct {
	Resolver PathResolver
	Log      *zap.Logger
}

func (e *InlineEmbedder) Embed(ref, role string) (*EmbeddedImage, error) {
	path := e.Resolver.Resolve(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		e.Log.Warn("embedded image missing, omitting",
			zap.String("role", role),
			zap.String("ref", ref),
			zap.Error(err),
		)
		return nil, nil
	}

	uri := fmt.Sprintf("data:%s;base64,%s",
		contentTypeFor(path), base64.StdEncoding.EncodeToString(data))
	return &EmbeddedImage{Ref: uri}, nil
}

func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
