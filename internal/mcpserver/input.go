package mcpserver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/swfxml"
)

// specInput represents the two ways a patch spec can be provided to a tool.
// Exactly one of File or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a patch.json file or a patch directory on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline patch spec content (JSON with comments or YAML)"`
	Root    string `json:"root,omitempty"    jsonschema:"Patch root for inline content; shape filePath values resolve against it"`
}

// treeInput represents the two ways an intermediate XML tree can be provided.
type treeInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an FFDec XML export on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline FFDec XML export"`
}

// cache holds parsed specs and trees for the session.
// File inputs are keyed by (absolutePath, modTime); content inputs by a
// SHA-256 hash. Entries expire after the configured TTL.
type cache struct {
	specs *expirable.LRU[string, *patchspec.PatchSpec]
	trees *expirable.LRU[string, *swfxml.Document]
}

func newCache(size int, ttl time.Duration) *cache {
	if size <= 0 {
		return nil
	}
	return &cache{
		specs: expirable.NewLRU[string, *patchspec.PatchSpec](size, nil, ttl),
		trees: expirable.NewLRU[string, *swfxml.Document](size, nil, ttl),
	}
}

// len returns the number of cached entries of both kinds.
func (c *cache) len() int {
	if c == nil {
		return 0
	}
	return c.specs.Len() + c.trees.Len()
}

// exactlyOne reports an error unless exactly one of file and content is set.
func exactlyOne(file, content string) error {
	switch {
	case file != "" && content != "":
		return errors.New("exactly one of file or content must be provided (got 2)")
	case file == "" && content == "":
		return errors.New("exactly one of file or content must be provided (got 0)")
	}
	return nil
}

// makeCacheKey returns the cache key for a file or content input, or ""
// when the input cannot be cached.
func makeCacheKey(kind, file, content string) string {
	if content != "" {
		h := sha256.Sum256([]byte(content))
		return kind + ":content:" + hex.EncodeToString(h[:])
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return ""
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "" // Can't stat, don't cache.
	}
	return fmt.Sprintf("%s:file:%s:%d", kind, abs, info.ModTime().UnixNano())
}

func (s *Server) checkInline(content string) error {
	if limit := s.cfg.MaxInlineSize; limit > 0 && len(content) > limit {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set DRIP_MCP_MAX_INLINE_SIZE to increase",
			len(content), limit)
	}
	return nil
}

// resolveSpec loads the spec from whichever input was provided. Cached
// specs are shared; callers must not modify them.
func (s *Server) resolveSpec(in specInput) (*patchspec.PatchSpec, error) {
	if err := exactlyOne(in.File, in.Content); err != nil {
		return nil, err
	}
	if err := s.checkInline(in.Content); err != nil {
		return nil, err
	}

	file := in.File
	if file != "" {
		// Key on the spec file itself: editing patch.json does not touch
		// the directory's mtime.
		p, err := patchspec.FindFile(file)
		if err != nil {
			return nil, err
		}
		file = p
	}

	var key string
	if s.cache != nil {
		key = makeCacheKey("spec", file, in.Content)
		if in.Content != "" {
			key += ":" + in.Root
		}
		if key != "" {
			if spec, ok := s.cache.specs.Get(key); ok {
				return spec, nil
			}
		}
	}

	var (
		spec *patchspec.PatchSpec
		err  error
	)
	if in.Content != "" {
		spec, err = patchspec.Parse([]byte(in.Content))
		if err == nil {
			spec.Root = in.Root
		}
	} else {
		spec, err = patchspec.LoadFile(file)
	}
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.cache.specs.Add(key, spec)
	}
	return spec, nil
}

// resolveTree decodes the tree from whichever input was provided. The
// returned document is always a private copy the caller may modify.
func (s *Server) resolveTree(in treeInput) (*swfxml.Document, error) {
	if err := exactlyOne(in.File, in.Content); err != nil {
		return nil, err
	}
	if err := s.checkInline(in.Content); err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil {
		key = makeCacheKey("tree", in.File, in.Content)
		if key != "" {
			if doc, ok := s.cache.trees.Get(key); ok {
				return doc.Clone(), nil
			}
		}
	}

	var (
		doc *swfxml.Document
		err error
	)
	if in.Content != "" {
		doc, err = swfxml.Decode(strings.NewReader(in.Content))
	} else {
		doc, err = swfxml.ReadFile(in.File)
	}
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.cache.trees.Add(key, doc)
		return doc.Clone(), nil
	}
	return doc, nil
}
