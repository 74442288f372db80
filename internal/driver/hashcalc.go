package driver

import (
	"crypto/sha256"
	"encoding/hex"

	"mend/internal/ast"
	"mend/internal/source"
)

// Digest is a sha256 content hash.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) IsZero() bool { return d == Digest{} }

// combineDigest: H(content || dep1 || dep2 ...). deps уже в детерминированном порядке.
func combineDigest(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// programDigest hashes the Java files of a directory run. Java units see each
// other's classes, so their diagnostics depend on every file of the program.
func programDigest(files []*source.File) Digest {
	deps := make([]Digest, 0, len(files))
	for _, f := range files {
		if isJava(f.Path) {
			deps = append(deps, pathDigest(f.Path, f.Hash))
		}
	}
	return combineDigest(Digest{}, deps...)
}

// fileKey is the cache key of one file: its own content plus, for Java, the
// program it was checked in.
func fileKey(f *source.File, program Digest, opts Options) Digest {
	salt := Digest{}
	if opts.NoLints {
		salt[0] = 1
	}
	own := pathDigest(f.Path, f.Hash)
	if !isJava(f.Path) {
		return combineDigest(own, salt)
	}
	return combineDigest(own, program, salt)
}

func pathDigest(path string, content [32]byte) Digest {
	h := sha256.New()
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func isJava(path string) bool {
	lang, ok := LangOf(path)
	return ok && lang == ast.LangJava
}
