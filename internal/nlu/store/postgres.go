// internal/nlu/store/postgres.go
package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"defi-nlu/internal/common/database"
	"defi-nlu/internal/common/logger"
	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/intent"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// PostgresCorpus reads operator-curated training examples. Rows marked
// inactive are ignored, as are rows whose intent label is unknown.
type PostgresCorpus struct {
	db     *database.PostgresClient
	query  string
	logger logger.Logger
}

func NewPostgresCorpus(db *database.PostgresClient, table string, log logger.Logger) (*PostgresCorpus, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid corpus table name %q", table)
	}
	return &PostgresCorpus{
		db:     db,
		query:  fmt.Sprintf("SELECT text, intent FROM %s WHERE active = TRUE ORDER BY id", table),
		logger: log,
	}, nil
}

func (p *PostgresCorpus) Load(ctx context.Context) ([]corpus.Example, error) {
	rows, err := p.db.Query(ctx, p.query)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	var (
		examples []corpus.Example
		skipped  int
	)
	for rows.Next() {
		var text, label string
		if err := rows.Scan(&text, &label); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}

		in, err := intent.Parse(label)
		if err != nil || strings.TrimSpace(text) == "" {
			skipped++
			p.logger.Warn("Skipping corpus row", map[string]interface{}{
				"intent": label,
				"text":   text,
			})
			continue
		}
		examples = append(examples, corpus.Example{Text: text, Intent: in})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus rows: %w", err)
	}

	p.logger.Info("Loaded corpus from postgres", map[string]interface{}{
		"examples": len(examples),
		"skipped":  skipped,
	})
	return examples, nil
}
