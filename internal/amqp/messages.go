package amqp

import (
	"encoding/json"
	"time"

	"gastos/internal/core"
)

// TransactionRecordedMessage is published after a transaction has been
// appended to the ledger. Amount uses the storage rendering so that no
// precision is lost on the wire.
type TransactionRecordedMessage struct {
	Kind        string    `json:"kind"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionRecordedMessage builds a message stamped with the current time.
func NewTransactionRecordedMessage(t core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		Kind:        t.Kind.String(),
		Amount:      t.Amount.Storage(),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.String(),
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON creates a message from JSON bytes
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Transaction rebuilds the domain value carried by the message.
func (m *TransactionRecordedMessage) Transaction() (core.Transaction, error) {
	kind, err := core.ParseKind(m.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseMoney(m.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.NewTransaction(kind, amount, m.Category, m.Description, date)
}
