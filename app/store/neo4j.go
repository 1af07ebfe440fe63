package store

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jKV stores each value as the payload of a (:KV {key}) node.
type Neo4jKV struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jKV wraps a driver created by config.InitNeo4j.
func NewNeo4jKV(driver neo4j.DriverWithContext) *Neo4jKV {
	return &Neo4jKV{driver: driver}
}

func (n *Neo4jKV) Get(ctx context.Context, key string) ([]byte, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (k:KV {key: $key}) RETURN k.value AS value",
			map[string]any{"key": key},
		)
		if err != nil {
			return nil, err
		}

		if res.Next(ctx) {
			value, _ := res.Record().Values[0].(string)
			return []byte(value), nil
		}
		return nil, res.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrNoValue
	}
	return result.([]byte), nil
}

func (n *Neo4jKV) Put(ctx context.Context, key string, value []byte) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MERGE (k:KV {key: $key}) "+
				"SET k.value = $value",
			map[string]any{
				"key":   key,
				"value": string(value),
			},
		)
		return nil, err
	})
	return err
}

func (n *Neo4jKV) Close() error {
	return n.driver.Close(context.Background())
}
