package storage

import (
	"log"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
)

// NewStoresFromEnv picks the persistence backend: Postgres when a DSN is
// configured, flat JSON files otherwise.
func NewStoresFromEnv(databaseURL, aliasPath, termMapPath, baseDictPath string) (repository.AliasRepository, repository.TermMapRepository, error) {
	if databaseURL == "" {
		aliases, err := NewFileAliasStore(aliasPath, baseDictPath)
		if err != nil {
			return nil, nil, err
		}
		terms, err := NewFileTermMap(termMapPath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("dictionary stores: files (%s, %s)", aliasPath, termMapPath)
		return aliases, terms, nil
	}

	db, err := OpenPostgres(databaseURL)
	if err != nil {
		return nil, nil, err
	}
	aliases, err := NewPostgresAliasStore(db, baseDictPath)
	if err != nil {
		return nil, nil, err
	}
	terms, err := NewPostgresTermMap(db)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("dictionary stores: postgres")
	return aliases, terms, nil
}
