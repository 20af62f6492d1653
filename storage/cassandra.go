package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// ProbRow is one sentence's out-of-sample result in the word_probs table.
type ProbRow struct {
	Dataset       string
	Fold          int
	SentenceIndex int
	WordCount     int
	Probs         [][]float64
}

// ConnectCassandra establishes a connection to Cassandra.
func ConnectCassandra(config *CassandraConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Cassandra: %w", err)
	}

	return session, nil
}

// InsertProbRow writes one sentence's word probability matrix. The matrix
// is stored as a JSON text column so downstream readers in any language can
// decode it without gocql-specific collection typing.
func InsertProbRow(session *gocql.Session, row *ProbRow) error {
	probsJSON, err := json.Marshal(row.Probs)
	if err != nil {
		return fmt.Errorf("failed to encode probabilities: %w", err)
	}

	query := `
		INSERT INTO word_probs (
			dataset, sentence_index, fold, word_count, probs, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	return session.Query(query,
		row.Dataset, row.SentenceIndex, row.Fold, row.WordCount, string(probsJSON), time.Now(),
	).Exec()
}

// FetchProbRows retrieves every stored row for a dataset, ordered by
// sentence index.
func FetchProbRows(session *gocql.Session, dataset string) ([]ProbRow, error) {
	query := `
		SELECT dataset, sentence_index, fold, word_count, probs
		FROM word_probs
		WHERE dataset = ?
	`

	iter := session.Query(query, dataset).Iter()
	defer iter.Close()

	var rows []ProbRow
	var row ProbRow
	var probsJSON string
	for iter.Scan(&row.Dataset, &row.SentenceIndex, &row.Fold, &row.WordCount, &probsJSON) {
		if err := json.Unmarshal([]byte(probsJSON), &row.Probs); err != nil {
			return nil, fmt.Errorf("failed to decode probabilities for sentence %d: %w", row.SentenceIndex, err)
		}
		rows = append(rows, row)
		row = ProbRow{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("error fetching probability rows: %w", err)
	}

	return rows, nil
}
