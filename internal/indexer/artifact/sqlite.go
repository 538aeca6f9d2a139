package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/glebarez/sqlite"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
)

const sqliteSchema = `
	CREATE TABLE terms (
		term          TEXT PRIMARY KEY,
		df            INTEGER NOT NULL,
		skip_interval INTEGER NOT NULL,
		skip_strategy TEXT NOT NULL,
		length        INTEGER NOT NULL
	);

	CREATE TABLE postings (
		term      TEXT NOT NULL,
		ord       INTEGER NOT NULL,
		doc_id    TEXT NOT NULL,
		tf        INTEGER NOT NULL,
		positions TEXT NOT NULL,
		skip      INTEGER,
		PRIMARY KEY (term, ord),
		FOREIGN KEY (term) REFERENCES terms(term)
	);

	CREATE INDEX idx_postings_doc_id ON postings(doc_id);
`

// ExportSQLite writes the index into a fresh SQLite database at path,
// replacing any existing file. Posting order is kept in the ord column.
func ExportSQLite(ctx context.Context, path string, idx *index.Index) error {
	tmp := path + ".tmp"
	os.Remove(tmp)
	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return fmt.Errorf("opening sqlite export: %w", err)
	}
	if err := exportInto(ctx, db, idx); err != nil {
		db.Close()
		os.Remove(tmp)
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing sqlite export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming sqlite export: %w", err)
	}
	return nil
}

func exportInto(ctx context.Context, db *sql.DB, idx *index.Index) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating sqlite schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	termStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO terms (term, df, skip_interval, skip_strategy, length) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing term insert: %w", err)
	}
	defer termStmt.Close()
	postStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO postings (term, ord, doc_id, tf, positions, skip) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing posting insert: %w", err)
	}
	defer postStmt.Close()

	for _, te := range idx.Snapshot() {
		e := te.Entry
		if _, err := termStmt.ExecContext(ctx, te.Term, e.DocFreq, e.SkipInterval, e.SkipStrategy, e.Length); err != nil {
			return fmt.Errorf("inserting term %q: %w", te.Term, err)
		}
		for ord, p := range te.Postings {
			positions, err := json.Marshal(p.Positions)
			if err != nil {
				return fmt.Errorf("encoding positions for %q/%q: %w", te.Term, p.DocID, err)
			}
			var skip sql.NullInt64
			if p.Skip != nil {
				skip = sql.NullInt64{Int64: int64(*p.Skip), Valid: true}
			}
			if _, err := postStmt.ExecContext(ctx, te.Term, ord, p.DocID, p.Frequency, string(positions), skip); err != nil {
				return fmt.Errorf("inserting posting %q/%q: %w", te.Term, p.DocID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

// ImportSQLite reads an export written by ExportSQLite back into an Index.
func ImportSQLite(ctx context.Context, path string) (*index.Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening sqlite export: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite export: %w", err)
	}
	defer db.Close()

	lexicon := make(map[string]index.LexiconEntry)
	rows, err := db.QueryContext(ctx, `SELECT term, df, skip_interval, skip_strategy, length FROM terms`)
	if err != nil {
		return nil, fmt.Errorf("querying terms: %w", err)
	}
	for rows.Next() {
		var term string
		var e index.LexiconEntry
		if err := rows.Scan(&term, &e.DocFreq, &e.SkipInterval, &e.SkipStrategy, &e.Length); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning term: %w", err)
		}
		lexicon[term] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating terms: %w", err)
	}

	postings := make(map[string]index.PostingList, len(lexicon))
	rows, err = db.QueryContext(ctx, `SELECT term, doc_id, tf, positions, skip FROM postings ORDER BY term, ord`)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			term, docID, positions string
			tf                     int
			skip                   sql.NullInt64
		)
		if err := rows.Scan(&term, &docID, &tf, &positions, &skip); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		p := index.Posting{DocID: docID, Frequency: tf}
		if err := json.Unmarshal([]byte(positions), &p.Positions); err != nil {
			return nil, fmt.Errorf("decoding positions for %q/%q: %w", term, docID, err)
		}
		if skip.Valid {
			s := int(skip.Int64)
			p.Skip = &s
		}
		postings[term] = append(postings[term], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}
	return index.FromArtifacts(lexicon, postings)
}
