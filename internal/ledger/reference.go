package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/bwmarrin/snowflake"
)

const ReferenceLength = 19

type ReferenceGenerator interface {
	Next() (string, error)
}

// SnowflakeReferences renders snowflake ids as 19 zero-padded digits. Ids are
// unique per node; nodes sharing a database must use distinct node numbers.
type SnowflakeReferences struct {
	node *snowflake.Node
}

func NewSnowflakeReferences(nodeID int64) (*SnowflakeReferences, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("NewSnowflakeReferences: %w", err)
	}
	return &SnowflakeReferences{node: node}, nil
}

func (g *SnowflakeReferences) Next() (string, error) {
	return fmt.Sprintf("%0*d", ReferenceLength, g.node.Generate().Int64()), nil
}

// RandomReferences draws 19 independent digits. Collisions are possible and
// are caught by the unique index on statements.reference_number.
type RandomReferences struct{}

func (RandomReferences) Next() (string, error) {
	digits := make([]byte, ReferenceLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("RandomReferences.Next: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
