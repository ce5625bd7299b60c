package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"rsbundle/internal/diag"
	"rsbundle/internal/lexer"
	"rsbundle/internal/project"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

// DefaultTokenEntries is the capacity used when NewTokenCache gets size <= 0.
const DefaultTokenEntries = 512

// TokenCache remembers token streams by file content hash. Files that
// produced lexer errors are never stored, so diagnostics are reported
// again on every run.
type TokenCache struct {
	entries *lru.Cache[project.Digest, []token.Token]
	hits    atomic.Int64
	misses  atomic.Int64
}

// TokenStats is a snapshot of cache counters.
type TokenStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

func NewTokenCache(size int) (*TokenCache, error) {
	if size <= 0 {
		size = DefaultTokenEntries
	}
	entries, err := lru.New[project.Digest, []token.Token](size)
	if err != nil {
		return nil, err
	}
	return &TokenCache{entries: entries}, nil
}

// Tokenize implements parser.TokenSource.
func (c *TokenCache) Tokenize(f *source.File, opts lexer.Options) []token.Token {
	key := project.Digest(f.Hash)
	if cached, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return rebase(cached, f.ID)
	}
	c.misses.Add(1)

	counter := &errorCounter{next: opts.Reporter}
	opts.Reporter = counter
	toks := lexer.Tokenize(f, opts)
	if counter.errors == 0 {
		c.entries.Add(key, toks)
	}
	return toks
}

func (c *TokenCache) Stats() TokenStats {
	return TokenStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.entries.Len(),
	}
}

// rebase копирует поток и переписывает FileID во всех спанах.
// Смещения совпадают: ключ — хеш содержимого.
func rebase(toks []token.Token, id source.FileID) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		t.Span.File = id
		if len(t.Leading) > 0 {
			leading := make([]token.Trivia, len(t.Leading))
			for j, tr := range t.Leading {
				tr.Span.File = id
				leading[j] = tr
			}
			t.Leading = leading
		}
		out[i] = t
	}
	return out
}

type errorCounter struct {
	next   diag.Reporter
	errors int
}

func (r *errorCounter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev == diag.SevError {
		r.errors++
	}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}
