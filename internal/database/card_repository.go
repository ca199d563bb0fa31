package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingo/pkg/models"
)

// CardRepository handles database operations for cards
type CardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

// GetByID returns a card by its ID
func (r *CardRepository) GetByID(id int64) (*models.Card, error) {
	var card models.Card
	if err := r.db.Get(&card, "SELECT * FROM cards WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return &card, nil
}

// GetByIDs returns the cards for the given ids, keyed by id
func (r *CardRepository) GetByIDs(ids []int64) (map[int64]models.Card, error) {
	out := make(map[int64]models.Card, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In("SELECT * FROM cards WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}
	var cards []models.Card
	if err := r.db.Select(&cards, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	for _, c := range cards {
		out[c.ID] = c
	}
	return out, nil
}

// List returns all cards, optionally filtered by type
func (r *CardRepository) List(cardType string) ([]models.Card, error) {
	var cards []models.Card
	var err error
	if cardType == "" {
		err = r.db.Select(&cards, "SELECT * FROM cards ORDER BY id")
	} else {
		err = r.db.Select(&cards, "SELECT * FROM cards WHERE card_type = $1 ORDER BY id", cardType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// Create inserts a new card
func (r *CardRepository) Create(card *models.Card) error {
	id, err := insertReturningID(r.db, `
		INSERT INTO cards (card_type, front, back, hint, reading, context_sentence)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		card.CardType, card.Front, card.Back, card.Hint, card.Reading, card.ContextSentence,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	card.ID = id
	return nil
}

// Update modifies an existing card
func (r *CardRepository) Update(card *models.Card) error {
	_, err := r.db.Exec(`
		UPDATE cards SET
			card_type = $1, front = $2, back = $3, hint = $4,
			reading = $5, context_sentence = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7`,
		card.CardType, card.Front, card.Back, card.Hint,
		card.Reading, card.ContextSentence, card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", card.ID, err)
	}
	return nil
}

// Delete removes a card
func (r *CardRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM cards WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return nil
}

// Exists reports whether a card with the same type and front side is
// already stored. Used by the importer to skip duplicates.
func (r *CardRepository) Exists(cardType models.CardType, front string) (bool, error) {
	var count int
	err := r.db.Get(&count,
		"SELECT COUNT(*) FROM cards WHERE card_type = $1 AND front = $2",
		cardType, strings.TrimSpace(front))
	if err != nil {
		return false, fmt.Errorf("failed to check card existence: %w", err)
	}
	return count > 0, nil
}

// TypesByIDs returns the card type of every given card id
func (r *CardRepository) TypesByIDs(ids []int64) (map[int64]models.CardType, error) {
	out := make(map[int64]models.CardType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In("SELECT id, card_type FROM cards WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build card type query: %w", err)
	}
	rows, err := r.db.Queryx(r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get card types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var cardType models.CardType
		if err := rows.Scan(&id, &cardType); err != nil {
			return nil, fmt.Errorf("failed to scan card type: %w", err)
		}
		out[id] = cardType
	}
	return out, rows.Err()
}
