package stream

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

func TestTokenized_KeepsStopWordGaps(t *testing.T) {
	rec := Tokenized(Document{DocID: "9", Title: "ignored title", Text: "The Python of Data"}, tokenizer.Options{})
	want := index.TokenRecord{DocID: "9", Tokens: []index.Occurrence{
		{Term: "python", Position: 1},
		{Term: "data", Position: 3},
	}}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("Tokenized() = %+v, want %+v", rec, want)
	}
}

func TestDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	content := `{"doc_id":"1","title":"a","text":"python tutorial"}

{"doc_id":"2","title":"b","text":"data science"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	var ids []string
	err := Documents(context.Background(), path, func(d Document) error {
		ids = append(ids, d.DocID)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"1", "2"}) {
		t.Errorf("ids = %v", ids)
	}

	bad := filepath.Join(dir, "bad.jsonl")
	os.WriteFile(bad, []byte(`{"title":"no id","text":"x"}`+"\n"), 0644)
	err = Documents(context.Background(), bad, func(Document) error { return nil })
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("missing doc_id error = %v, want ErrInvalidInput", err)
	}
}
