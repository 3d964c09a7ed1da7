package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/gymledger/gymledger/internal/config"
	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/logger"
)

// tableSpec declares one table's keys and secondary indexes.
type tableSpec struct {
	entity  string
	sortKey string
	indexes []indexSpec
}

type indexSpec struct {
	name    string
	hashKey string
}

var tables = []tableSpec{
	{entity: "members", sortKey: "id"},
	{
		entity:  "memberships",
		sortKey: "id",
		indexes: []indexSpec{
			{name: "member_id-index", hashKey: "member_id"},
			{name: "renewal_key-index", hashKey: "renewal_key"},
		},
	},
	{entity: "recurring_charges", sortKey: "id"},
	{entity: "ledger_transactions", sortKey: "id"},
	{entity: "daily_cash", sortKey: "date"},
	{entity: "scan_locks", sortKey: "key"},
}

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the tables that would be created without creating them")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	client, err := docstore.NewClient(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create document store client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, spec := range tables {
		name := client.TableName(spec.entity)
		if *dryRun {
			fmt.Printf("would create table %s (gym_id, %s)\n", name, spec.sortKey)
			continue
		}

		if err := createTable(ctx, client.DB(), name, spec); err != nil {
			var exists *ddbtypes.ResourceInUseException
			if errors.As(err, &exists) {
				logger.Infow("table already exists", "table", name)
				continue
			}
			logger.Fatalf("Failed to create table %s: %v", name, err)
		}
		logger.Infow("created table", "table", name)
	}
}

func createTable(ctx context.Context, db *dynamodb.Client, name string, spec tableSpec) error {
	attrs := []ddbtypes.AttributeDefinition{
		{AttributeName: aws.String("gym_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
		{AttributeName: aws.String(spec.sortKey), AttributeType: ddbtypes.ScalarAttributeTypeS},
	}

	var gsis []ddbtypes.GlobalSecondaryIndex
	for _, idx := range spec.indexes {
		attrs = append(attrs, ddbtypes.AttributeDefinition{
			AttributeName: aws.String(idx.hashKey),
			AttributeType: ddbtypes.ScalarAttributeTypeS,
		})
		gsis = append(gsis, ddbtypes.GlobalSecondaryIndex{
			IndexName: aws.String(idx.name),
			KeySchema: []ddbtypes.KeySchemaElement{
				{AttributeName: aws.String(idx.hashKey), KeyType: ddbtypes.KeyTypeHash},
			},
			Projection: &ddbtypes.Projection{ProjectionType: ddbtypes.ProjectionTypeAll},
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String("gym_id"), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String(spec.sortKey), KeyType: ddbtypes.KeyTypeRange},
		},
		AttributeDefinitions:   attrs,
		BillingMode:            ddbtypes.BillingModePayPerRequest,
		GlobalSecondaryIndexes: gsis,
	}

	_, err := db.CreateTable(ctx, input)
	return err
}
