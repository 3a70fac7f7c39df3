package zeno

import "iter"

// Articles returns an iterator over all articles in index order.
//
// Each step acquires the archive lock separately, so other callers may
// interleave between steps. Iteration stops after the first error.
func (f *File) Articles() iter.Seq2[Article, error] {
	return f.articleRange(0, len(f.offsets))
}

// NamespaceArticles returns an iterator over the articles of namespace ns.
func (f *File) NamespaceArticles(ns byte) iter.Seq2[Article, error] {
	return func(yield func(Article, error) bool) {
		f.mu.Lock()
		begin, err := f.namespaceBeginLocked(ns)
		var end int
		if err == nil {
			end, err = f.namespaceEndLocked(ns)
		}
		f.mu.Unlock()
		if err != nil {
			yield(Article{}, err)
			return
		}
		f.articleRange(begin, end)(yield)
	}
}

func (f *File) articleRange(begin, end int) iter.Seq2[Article, error] {
	return func(yield func(Article, error) bool) {
		for i := begin; i < end; i++ {
			a, err := f.Article(i)
			if !yield(a, err) || err != nil {
				return
			}
		}
	}
}
