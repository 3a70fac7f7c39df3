package zeno

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/zeno/internal/sizing"
	"github.com/meigma/zeno/internal/zenotype"
)

// maxRedirects bounds redirect chains followed by Article.Data.
const maxRedirects = 16

// Article is a handle to one article of an archive.
//
// The zero Article represents "not found"; use Valid to tell it apart.
type Article struct {
	file   *File
	index  int
	dirent Dirent
}

// Valid reports whether the article refers to an archive entry.
func (a Article) Valid() bool { return a.file != nil }

// Index returns the article index within the archive.
func (a Article) Index() int { return a.index }

// Dirent returns the article's directory entry.
func (a Article) Dirent() Dirent { return a.dirent }

// Namespace returns the article namespace.
func (a Article) Namespace() byte { return a.dirent.Namespace() }

// Title returns the article title.
func (a Article) Title() string { return a.dirent.Title() }

// MimeType returns the article MIME type.
func (a Article) MimeType() MimeType { return a.dirent.MimeType() }

// Size returns the stored payload size.
func (a Article) Size() uint32 { return a.dirent.Size() }

// IsRedirect reports whether the article points at another article.
func (a Article) IsRedirect() bool { return a.dirent.IsRedirect() }

// Redirect returns the article this redirect points at.
func (a Article) Redirect() (Article, error) {
	if !a.Valid() {
		return Article{}, ErrInvalidArticle
	}
	target, ok := a.dirent.RedirectIndex()
	if !ok {
		return Article{}, fmt.Errorf("%w: %q", ErrNotRedirect, a.Title())
	}
	return a.file.Article(int(target))
}

// Data returns the decoded article content.
//
// Redirects are followed. When a cache is configured, content is served from
// and stored into it. Concurrent calls for the same article share one read.
func (a Article) Data() ([]byte, error) {
	if !a.Valid() {
		return nil, ErrInvalidArticle
	}

	target := a
	for hops := 0; target.IsRedirect(); hops++ {
		if hops == maxRedirects {
			return nil, zenotype.NewFormatError(fmt.Sprintf("redirect chain from %q is too long", a.Title()))
		}
		next, err := target.Redirect()
		if err != nil {
			return nil, err
		}
		target = next
	}
	return a.file.articleData(target.index, target.dirent)
}

// contentKey returns the cache key of the article at idx.
func (f *File) contentKey(idx int) digest.Digest {
	return digest.FromString(f.id.String() + "#" + strconv.Itoa(idx))
}

// articleData reads and decodes the payload of the article at idx.
func (f *File) articleData(idx int, d Dirent) ([]byte, error) {
	var key digest.Digest
	if f.cache != nil {
		key = f.contentKey(idx)
		if content, ok := f.cache.Get(key); ok {
			f.log().Debug("article cache hit", "index", idx)
			return content, nil
		}
		f.log().Debug("article cache miss", "index", idx)
	}

	result, err, shared := f.dataGroup.Do(strconv.Itoa(idx), func() (any, error) {
		if f.maxArticleSize != 0 && uint64(d.Size()) > f.maxArticleSize {
			return nil, fmt.Errorf("%w: stored size %d exceeds limit of %d", ErrSizeOverflow, d.Size(), f.maxArticleSize)
		}
		off, ok := sizing.AddUint64(f.header.DataPos, uint64(d.Offset()))
		if !ok {
			return nil, zenotype.WrapFormatError("article data offset", ErrSizeOverflow)
		}

		stored, err := f.ReadData(off, d.Size())
		if err != nil {
			return nil, fmt.Errorf("read article %d: %w", idx, err)
		}
		content, err := f.decoder.Decode(d.Compression(), stored, d.OriginalSize())
		if err != nil {
			return nil, fmt.Errorf("read article %d: %w", idx, err)
		}

		if f.cache != nil {
			if err := f.cache.Put(key, content); err != nil {
				f.log().Debug("article cache put failed", "index", idx, "error", err)
			}
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}

	content := result.([]byte) //nolint:errcheck // type assertion always succeeds when err is nil
	if shared {
		return bytes.Clone(content), nil
	}
	return content, nil
}
