// Package corpus turns a QA corpus file into a searchable store.
//
// The builder reads question/answer pairs, drops duplicates by normalized
// question, fits the TF-IDF vocabulary over question and answer text,
// vectorizes every row concurrently on a worker pool and builds the
// nearest-neighbor index. The result is a validated storage.Store ready to be
// saved with the artifact package.
//
//	pairs, err := corpus.ReadFile("qa_pairs.json")
//	store, err := corpus.Build(ctx, pairs, corpus.WithProgress(os.Stderr))
//	err = artifact.Save(ctx, "store", store)
package corpus
