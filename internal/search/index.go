// 包 search：基于名称的检索，前缀与子串匹配后按编辑距离排序
package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"atlas/internal/viewer"
)

// DefaultLimit：limit<=0 时的返回上限
const DefaultLimit = 10

type doc struct {
	entry viewer.CorpusEntry
	name  string
	pos   int
}

// 文档注释：只读检索索引
// 约束：构建后不再修改，可并发查询；同分时保持语料原始顺序。
type Index struct {
	docs []doc
}

// New：签名与 viewer.SearchFactory 一致
func New(corpus []viewer.CorpusEntry) viewer.Searcher {
	return NewIndex(corpus)
}

func NewIndex(corpus []viewer.CorpusEntry) *Index {
	docs := make([]doc, 0, len(corpus))
	for i, e := range corpus {
		docs = append(docs, doc{entry: e, name: strings.ToLower(e.Name), pos: i})
	}
	return &Index{docs: docs}
}

func (x *Index) Len() int { return len(x.docs) }

type hit struct {
	doc    *doc
	prefix bool
	dist   int
}

// 文档注释：检索
// 约束：大小写不敏感；空查询返回空；前缀命中排在子串命中之前，其次按编辑距离升序。
func (x *Index) Search(q string, limit int) []viewer.CorpusEntry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	var hits []hit
	for i := range x.docs {
		d := &x.docs[i]
		if !strings.Contains(d.name, q) {
			continue
		}
		hits = append(hits, hit{doc: d, prefix: strings.HasPrefix(d.name, q), dist: levenshtein.ComputeDistance(q, d.name)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		return a.dist < b.dist
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]viewer.CorpusEntry, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.doc.entry)
	}
	return out
}
