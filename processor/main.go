package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gocql/gocql"

	"github.com/vineetp6/cleanlab-examples/archive"
	"github.com/vineetp6/cleanlab-examples/conll"
	"github.com/vineetp6/cleanlab-examples/folds"
	"github.com/vineetp6/cleanlab-examples/metrics"
	"github.com/vineetp6/cleanlab-examples/model"
	"github.com/vineetp6/cleanlab-examples/reduce"
	"github.com/vineetp6/cleanlab-examples/storage"
)

func main() {
	log.Println("=== Out-of-sample probability pipeline starting ===")

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Configuration:")
	log.Printf("  Dataset: %s (%s)", cfg.Dataset, cfg.DatasetPath)
	log.Printf("  Output: %s", cfg.OutputPath)
	log.Printf("  Folds: %d, seed: %d", cfg.Folds, cfg.Seed)
	log.Printf("  Averaging: %s", cfg.Averaging)
	log.Printf("  Cassandra: %v, Redis: %v", cfg.UseCassandra, cfg.UseRedis)
	log.Println()

	vocab := conll.CoNLL2003()
	sentences, err := conll.ReadFile(cfg.DatasetPath, vocab)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Printf("Loaded %d sentences", len(sentences))

	classMap, err := reduce.NewClassMap(cfg.ClassMap)
	if err != nil {
		log.Fatalf("Invalid class map: %v", err)
	}
	if classMap.NumFine() != vocab.Len() {
		log.Fatalf("Class map covers %d fine classes, vocabulary has %d", classMap.NumFine(), vocab.Len())
	}

	policy, err := cfg.Policy()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	assignments, err := folds.Split(len(sentences), cfg.Folds, cfg.Seed)
	if err != nil {
		log.Fatalf("Failed to split folds: %v", err)
	}

	var session *gocql.Session
	if cfg.UseCassandra {
		log.Println("Connecting to Cassandra...")
		session, err = storage.ConnectCassandra(storage.LoadCassandraConfig())
		if err != nil {
			log.Fatalf("Failed to connect to Cassandra: %v", err)
		}
		defer session.Close()
	}

	var cache *storage.RedisCache
	if cfg.UseRedis {
		log.Println("Connecting to Redis...")
		cache, err = storage.ConnectRedis(storage.LoadRedisConfig())
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
	}

	aligner := reduce.NewAligner(reduce.DefaultSubstitutions())

	results := make([][][][]float64, cfg.Folds)
	for f, heldout := range assignments {
		log.Printf("=== Fold %d: %d heldout sentences ===", f, len(heldout))
		foldResults, err := processFold(cfg, f, heldout, sentences, vocab, classMap, aligner, policy, session, cache)
		if err != nil {
			log.Fatalf("Fold %d failed: %v", f, err)
		}
		results[f] = foldResults
	}

	all, err := folds.Assemble(len(sentences), assignments, results)
	if err != nil {
		log.Fatalf("Failed to assemble fold results: %v", err)
	}

	reportMetrics(sentences, all, classMap, vocab)

	log.Printf("Writing artifact to %s...", cfg.OutputPath)
	if err := archive.Write(cfg.OutputPath, all); err != nil {
		log.Fatalf("Failed to write artifact: %v", err)
	}
	log.Printf("Wrote %d sentence matrices to %s", len(all), cfg.OutputPath)
}

// processFold produces one word probability matrix per heldout sentence, in
// heldout order.
func processFold(cfg *Config, fold int, heldout []int, sentences []conll.Sentence, vocab *conll.Vocabulary, classMap *reduce.ClassMap, aligner *reduce.Aligner, policy reduce.Policy, session *gocql.Session, cache *storage.RedisCache) ([][][]float64, error) {
	if cache != nil {
		done, err := cache.FoldDone(cfg.Dataset, fold)
		if err != nil {
			return nil, err
		}
		if done {
			log.Printf("  Fold %d already completed, loading from cache", fold)
			return loadFoldFromCache(cfg.Dataset, fold, heldout, cache)
		}
	}

	foldDir := filepath.Join(cfg.WorkDir, fmt.Sprintf("fold%d", fold))
	if err := os.MkdirAll(foldDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create fold directory: %w", err)
	}

	if cfg.TrainCommand != "" {
		trainPath := filepath.Join(foldDir, "train.conll")
		if err := conll.WriteFile(trainPath, complement(sentences, heldout), vocab); err != nil {
			return nil, err
		}
		if _, err := RunTraining(cfg.TrainCommand, fold, trainPath, foldDir); err != nil {
			return nil, err
		}
	}

	predictor, err := newPredictor(cfg, foldDir)
	if err != nil {
		return nil, err
	}
	defer predictor.Close()

	results := make([][][]float64, 0, len(heldout))
	for _, idx := range heldout {
		wordProbs, err := oosPrediction(cfg, idx, sentences[idx], predictor, classMap, aligner, policy, cache)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", idx, err)
		}

		if session != nil {
			row := &storage.ProbRow{
				Dataset:       cfg.Dataset,
				Fold:          fold,
				SentenceIndex: idx,
				WordCount:     len(sentences[idx].Words),
				Probs:         wordProbs,
			}
			if err := storage.InsertProbRow(session, row); err != nil {
				return nil, fmt.Errorf("sentence %d: %w", idx, err)
			}
		}

		results = append(results, wordProbs)
	}

	if cache != nil {
		if err := cache.MarkFoldDone(cfg.Dataset, fold); err != nil {
			return nil, err
		}
	}

	log.Printf("  Fold %d done: %d sentences", fold, len(results))
	return results, nil
}

// oosPrediction runs one sentence through predict -> remap -> align ->
// aggregate, consulting the cache first when one is configured.
func oosPrediction(cfg *Config, idx int, sentence conll.Sentence, predictor model.Predictor, classMap *reduce.ClassMap, aligner *reduce.Aligner, policy reduce.Policy, cache *storage.RedisCache) ([][]float64, error) {
	if cache != nil {
		probs, hit, err := cache.CachedPrediction(cfg.Dataset, idx)
		if err != nil {
			return nil, err
		}
		if hit {
			return probs, nil
		}
	}

	tokens, fineProbs, err := predictor.Predict(sentence.Words)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	coarseProbs, err := classMap.ReduceProbs(fineProbs)
	if err != nil {
		return nil, err
	}

	tokens, coarseProbs, err = aligner.Align(tokens, coarseProbs, sentence.Words)
	if err != nil {
		return nil, err
	}

	wordProbs, err := reduce.Aggregate(coarseProbs, tokens, sentence.Words, policy)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.CachePrediction(cfg.Dataset, idx, wordProbs); err != nil {
			return nil, err
		}
	}

	return wordProbs, nil
}

// loadFoldFromCache rebuilds a completed fold's results purely from the
// cache. A miss on a completed fold means the cache was evicted; the caller
// should clear the fold-done marker and rerun.
func loadFoldFromCache(dataset string, fold int, heldout []int, cache *storage.RedisCache) ([][][]float64, error) {
	results := make([][][]float64, 0, len(heldout))
	for _, idx := range heldout {
		probs, hit, err := cache.CachedPrediction(dataset, idx)
		if err != nil {
			return nil, err
		}
		if !hit {
			return nil, fmt.Errorf("fold %d is marked done but sentence %d is missing from the cache", fold, idx)
		}
		results = append(results, probs)
	}
	return results, nil
}

// newPredictor picks the prediction backend for a fold.
func newPredictor(cfg *Config, foldDir string) (model.Predictor, error) {
	if cfg.PredictWorker != "" {
		return model.NewSubprocessPredictor(cfg.PredictWorker, "--model-dir", foldDir)
	}

	return model.NewONNXClassifier(model.Config{
		TokenizerPath: cfg.TokenizerPath,
		ModelPath:     filepath.Join(foldDir, "model.onnx"),
		OrtLibrary:    cfg.OrtLibrary,
		SpecialTokens: model.DefaultSpecialTokens(),
	})
}

// complement returns every sentence outside the heldout fold, preserving
// dataset order. heldout indices arrive sorted from folds.Split.
func complement(sentences []conll.Sentence, heldout []int) []conll.Sentence {
	out := make([]conll.Sentence, 0, len(sentences)-len(heldout))
	h := 0
	for i, s := range sentences {
		if h < len(heldout) && heldout[h] == i {
			h++
			continue
		}
		out = append(out, s)
	}
	return out
}

// reportMetrics logs accuracy and per-class scores of the argmax
// predictions against the coarse gold labels. Informational only.
func reportMetrics(sentences []conll.Sentence, all [][][]float64, classMap *reduce.ClassMap, vocab *conll.Vocabulary) {
	var gold, pred []int
	for i, s := range sentences {
		coarseGold, err := classMap.ReduceLabels(s.Labels)
		if err != nil {
			log.Printf("Skipping metrics: sentence %d: %v", i, err)
			return
		}
		for w, g := range coarseGold {
			gold = append(gold, g)
			pred = append(pred, metrics.Argmax(all[i][w]))
		}
	}

	report, err := metrics.Evaluate(gold, pred, classMap.NumCoarse())
	if err != nil {
		log.Printf("Skipping metrics: %v", err)
		return
	}

	log.Printf("Held-out accuracy over %d words: %.4f", len(gold), report.Accuracy)
	log.Printf("Micro P/R/F1: %.4f / %.4f / %.4f", report.Micro.Precision, report.Micro.Recall, report.Micro.F1)
	for c, s := range report.PerClass {
		log.Printf("  class %d: P %.4f R %.4f F1 %.4f (support %d)", c, s.Precision, s.Recall, s.F1, s.Support)
	}
}
